package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePath(t *testing.T) {

	assert := assert.New(t)

	assert.Equal("/Ac/L1/Power", LinePath(0, QuantityPower))
	assert.Equal("/Ac/L2/Energy/Forward", LinePath(1, QuantityEnergyForward))
	assert.Equal("/Ac/L3/Voltage", LinePath(2, QuantityVoltage))
}

func TestSetQuantityOnlyPublishesChanges(t *testing.T) {

	require := require.New(t)

	pub := &recordingPublisher{}
	m := newMeter(0, 7, "com.victronenergy.grid.smappee_07", pub)

	require.True(m.SetQuantity(PathPower, 100.0))
	require.False(m.SetQuantity(PathPower, 100.0))
	require.True(m.SetQuantity(PathPower, 100.5))
	require.Equal(2, pub.count())

	last := pub.updates[1]
	require.Equal("com.victronenergy.grid.smappee_07", last.Service)
	require.Equal(7, last.DeviceInstance)
	require.Equal(PathPower, last.Path)
	require.Equal(100.5, last.Value)
	require.Equal(100.5, m.Value(PathPower))
}

func TestSetQuantityExactEquality(t *testing.T) {

	pub := &recordingPublisher{}
	m := newMeter(0, 0, "svc", pub)

	m.SetQuantity(PathPower, 0.1+0.2)
	// 0.1+0.2 != 0.3 in binary floating point, no tolerance is applied
	assert.True(t, m.SetQuantity(PathPower, 0.3))
	assert.Equal(t, 2, pub.count())
}

func TestSetQuantityNilOnUnsetPath(t *testing.T) {

	require := require.New(t)

	pub := &recordingPublisher{}
	m := newMeter(0, 0, "svc", pub)

	var missing *string
	require.False(m.SetQuantity(PathSerial, nil))
	require.False(m.SetQuantity(PathSerial, missing))
	require.Equal(0, pub.count())

	serial := "5010003210"
	require.True(m.SetQuantity(PathSerial, &serial))
	require.Equal("5010003210", m.Value(PathSerial))

	// going back to null is a change too
	require.True(m.SetQuantity(PathSerial, nil))
	require.Nil(pub.updates[1].Value)
}

func TestSetQuantityNormalizesNumbers(t *testing.T) {

	pub := &recordingPublisher{}
	m := newMeter(0, 0, "svc", pub)

	assert.True(t, m.SetQuantity(PathDeviceInstance, 3))
	assert.False(t, m.SetQuantity(PathDeviceInstance, int64(3)))
	assert.False(t, m.SetQuantity(PathDeviceInstance, uint(3)))

	v := 230.0
	assert.True(t, m.SetQuantity(LinePath(0, QuantityVoltage), &v))
	assert.False(t, m.SetQuantity(LinePath(0, QuantityVoltage), 230.0))
}

func TestApplySkipsAbsentLines(t *testing.T) {

	require := require.New(t)

	pub := &recordingPublisher{}
	m := newMeter(0, 0, "svc", pub)

	v := 230.0
	n := m.Apply(Readings{
		Lines: [PhaseCount]*LineValues{{Current: 1, Power: 100, Voltage: &v}, nil, nil},
		Power: 100,
	})
	// 5 line quantities and 3 totals
	require.Equal(8, n)

	values := pub.published("svc", 0)
	require.Equal(100.0, values["/Ac/L1/Power"])
	require.Equal(230.0, values["/Ac/L1/Voltage"])
	require.Equal(100.0, values[PathPower])
	require.NotContains(values, "/Ac/L2/Power")
	require.NotContains(values, "/Ac/L3/Power")

	require.Equal(0, m.Apply(Readings{
		Lines: [PhaseCount]*LineValues{{Current: 1, Power: 100, Voltage: &v}, nil, nil},
		Power: 100,
	}))
}

func TestSnapshot(t *testing.T) {

	m := newMeter(1, 4, "svc", nil)
	m.SetQuantity(PathPower, 42.0)
	m.SetQuantity(PathSerial, "abc")
	m.SetQuantity(PathSerial, nil)

	snap := m.Snapshot()
	assert.Equal(t, 1, snap.GroupIndex)
	assert.Equal(t, 4, snap.DeviceInstance)
	assert.Equal(t, map[string]any{PathPower: 42.0}, snap.Values)

	// snapshot is a copy
	snap.Values[PathPower] = 0.0
	assert.Equal(t, 42.0, m.Value(PathPower))
}

func TestRepublishSendsCachedValues(t *testing.T) {

	require := require.New(t)

	pub := &recordingPublisher{}
	m := newMeter(0, 3, "com.victronenergy.grid.smappee_03", pub)

	m.SetQuantity(PathPower, 100.0)
	m.SetQuantity(PathSerial, "5010003210")
	m.SetQuantity(LinePath(0, QuantityVoltage), 230.0)
	m.SetQuantity(LinePath(0, QuantityVoltage), nil)
	require.Equal(4, pub.count())

	require.Equal(2, m.Republish())
	require.Equal(6, pub.count())

	// sorted by path, nil values skipped
	require.Equal(PathPower, pub.updates[4].Path)
	require.Equal(100.0, pub.updates[4].Value)
	require.Equal(PathSerial, pub.updates[5].Path)
	require.Equal("5010003210", pub.updates[5].Value)
	require.Equal(3, pub.updates[5].DeviceInstance)

	// the cache still suppresses unchanged values
	require.False(m.SetQuantity(PathPower, 100.0))
	require.Equal(6, pub.count())
}
