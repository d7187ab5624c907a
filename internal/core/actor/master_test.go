package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "github.com/berfenger/smappee2mqtt/internal/adapter/actor"
	"github.com/berfenger/smappee2mqtt/internal/core/domain"
	"github.com/berfenger/smappee2mqtt/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const singleMeterPayload = `{
	"voltages": [{"phaseId": 0, "voltage": 230}],
	"channelPowers": [{"ctInput": 0, "phaseId": 0, "current": 0.5, "power": 100, "importEnergy": 3600000, "exportEnergy": 0}],
	"firmwareVersion": "1.0.113",
	"serialNr": "5010003210"
}`

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(500 * time.Millisecond)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")
	assert.Equal(t, "0 meters", healthResp.State)

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterRoutesRealtimeMessages(t *testing.T) {

	require := require.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, "master")
	require.NoError(err)

	as.Root.Send(pid, domain.RealtimeMessage{Topic: "servicelocation/1/realtime", Payload: []byte(singleMeterPayload)})
	as.Root.Send(pid, domain.RealtimeMessage{Topic: "servicelocation/1/realtime", Payload: []byte(`{"voltages":`)})

	var meters domain.GetMetersResponse
	require.Eventually(func() bool {
		res, err := as.Root.RequestFuture(pid, domain.GetMetersRequest{}, time.Second).Result()
		if err != nil {
			return false
		}
		meters = res.(domain.GetMetersResponse)
		return meters.Stats.Received == 2
	}, 3*time.Second, 50*time.Millisecond)

	require.Len(meters.Meters, 1)
	m := meters.Meters[0]
	require.Equal(0, m.GroupIndex)
	require.Equal(0, m.DeviceInstance)
	require.Equal("com.victronenergy.grid.smappee_00", m.Service)
	require.Equal(100.0, m.Values["/Ac/L1/Power"])
	require.Equal(1.0, m.Values["/Ac/Energy/Forward"])
	require.Equal("5010003210", m.Values["/Serial"])
	require.EqualValues(1, meters.Stats.Dropped)

	as.Root.Stop(pid)
}

func TestMasterRoutesRepublishToBridge(t *testing.T) {

	require := require.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()

	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	updates := make(chan domain.QuantityUpdate, 100)
	sub := as.EventStream.Subscribe(func(evt interface{}) {
		if update, ok := evt.(domain.QuantityUpdate); ok {
			updates <- update
		}
	})
	defer as.EventStream.Unsubscribe(sub)

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := as.Root.SpawnNamed(props, "master")
	require.NoError(err)

	as.Root.Send(pid, domain.RealtimeMessage{Payload: []byte(singleMeterPayload)})
	_, err = as.Root.RequestFuture(pid, domain.GetMetersRequest{}, time.Second).Result()
	require.NoError(err)
	published := len(updates)
	require.Positive(published)

	// a reconnect of the MQTT child republishes every cached value
	as.Root.Send(pid, domain.RepublishRequest{})
	require.Eventually(func() bool { return len(updates) == 2*published }, 2*time.Second, 20*time.Millisecond)
}
