package meter

import (
	"fmt"
	"maps"
	"slices"

	"github.com/berfenger/smappee2mqtt/internal/core/domain"
	"github.com/berfenger/smappee2mqtt/internal/core/port"
)

const (
	PathProcessName    = "/Management/ProcessName"
	PathProcessVersion = "/Management/ProcessVersion"
	PathConnection     = "/Management/Connection"
	PathDeviceInstance = "/DeviceInstance"
	PathProductId      = "/ProductId"
	PathProductName    = "/ProductName"
	PathFirmware       = "/FirmwareVersion"
	PathSerial         = "/Serial"
	PathConnected      = "/Connected"

	PathPower         = "/Ac/Power"
	PathEnergyForward = "/Ac/Energy/Forward"
	PathEnergyReverse = "/Ac/Energy/Reverse"

	QuantityCurrent       = "Current"
	QuantityPower         = "Power"
	QuantityVoltage       = "Voltage"
	QuantityEnergyForward = "Energy/Forward"
	QuantityEnergyReverse = "Energy/Reverse"

	ProductId   = 0xFFFF
	ProductName = "SMAPPEE current meter"
)

// LineQuantities lists the per-line quantities in publish order.
var LineQuantities = []string{
	QuantityCurrent,
	QuantityEnergyForward,
	QuantityEnergyReverse,
	QuantityPower,
	QuantityVoltage,
}

// LinePath returns the path of a quantity of line 0..2 (published as L1..L3).
func LinePath(phase int, quantity string) string {
	return fmt.Sprintf("/Ac/L%d/%s", phase+1, quantity)
}

// Meter is a virtual three-phase meter. It remembers the last value published
// for every path and only forwards changes to its publisher.
type Meter struct {
	groupIndex     int
	deviceInstance int
	service        string
	values         map[string]any
	publisher      port.QuantityPublisher
}

func newMeter(groupIndex, deviceInstance int, service string, publisher port.QuantityPublisher) *Meter {
	return &Meter{
		groupIndex:     groupIndex,
		deviceInstance: deviceInstance,
		service:        service,
		values:         make(map[string]any),
		publisher:      publisher,
	}
}

func (m *Meter) GroupIndex() int {
	return m.groupIndex
}

func (m *Meter) DeviceInstance() int {
	return m.deviceInstance
}

func (m *Meter) Service() string {
	return m.service
}

// Value returns the last published value of path, nil if never set.
func (m *Meter) Value(path string) any {
	return m.values[path]
}

// SetQuantity publishes value on path unless it equals the last published
// value. Comparison is exact. Unset paths hold nil, so setting nil on them is
// a no-op. Returns whether a publish happened.
func (m *Meter) SetQuantity(path string, value any) bool {
	value = normalizeValue(value)
	if m.values[path] == value {
		return false
	}
	m.values[path] = value
	if m.publisher != nil {
		m.publisher.PublishQuantity(domain.QuantityUpdate{
			Service:        m.service,
			DeviceInstance: m.deviceInstance,
			Path:           path,
			Value:          value,
		})
	}
	return true
}

// Apply publishes the changed values of r and returns the publish count.
// Lines without a channel are left untouched.
func (m *Meter) Apply(r Readings) int {
	n := 0
	set := func(path string, value any) {
		if m.SetQuantity(path, value) {
			n++
		}
	}

	for phase, line := range r.Lines {
		if line == nil {
			continue
		}
		set(LinePath(phase, QuantityCurrent), line.Current)
		set(LinePath(phase, QuantityEnergyForward), line.EnergyForward)
		set(LinePath(phase, QuantityEnergyReverse), line.EnergyReverse)
		set(LinePath(phase, QuantityPower), line.Power)
		set(LinePath(phase, QuantityVoltage), line.Voltage)
	}

	set(PathPower, r.Power)
	set(PathEnergyForward, r.EnergyForward)
	set(PathEnergyReverse, r.EnergyReverse)
	return n
}

// Republish publishes every cached non-nil value again, in path order, and
// returns the publish count. The cache is left unchanged.
func (m *Meter) Republish() int {
	if m.publisher == nil {
		return 0
	}
	values := m.Snapshot().Values
	for _, path := range slices.Sorted(maps.Keys(values)) {
		m.publisher.PublishQuantity(domain.QuantityUpdate{
			Service:        m.service,
			DeviceInstance: m.deviceInstance,
			Path:           path,
			Value:          values[path],
		})
	}
	return len(values)
}

func (m *Meter) Snapshot() domain.MeterSnapshot {
	values := maps.Clone(m.values)
	// drop paths that were reset to null
	maps.DeleteFunc(values, func(_ string, v any) bool { return v == nil })
	return domain.MeterSnapshot{
		GroupIndex:     m.groupIndex,
		DeviceInstance: m.deviceInstance,
		Service:        m.service,
		Values:         values,
	}
}

// normalizeValue folds pointers and numeric kinds so that equal readings
// compare equal regardless of how the caller typed them.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	case *string:
		if v == nil {
			return nil
		}
		return *v
	case float32:
		return float64(v)
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint:
		return int(v)
	default:
		return value
	}
}
