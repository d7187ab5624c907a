package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	. "github.com/berfenger/smappee2mqtt/internal/core/domain"
	"github.com/berfenger/smappee2mqtt/internal/core/meter"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE       = "bridge"
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_CURRENT         = "current"
	DEVICE_CLASS_ENERGY          = "energy"
	DEVICE_CLASS_POWER           = "power"
	DEVICE_CLASS_VOLTAGE         = "voltage"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
)

type quantityKind struct {
	name        string
	unit        string
	stateClass  string
	deviceClass string
}

var quantityKinds = map[string]quantityKind{
	meter.QuantityCurrent:       {"current", "A", STATE_CLASS_MEASUREMENT, DEVICE_CLASS_CURRENT},
	meter.QuantityPower:         {"power", "W", STATE_CLASS_MEASUREMENT, DEVICE_CLASS_POWER},
	meter.QuantityVoltage:       {"voltage", "V", STATE_CLASS_MEASUREMENT, DEVICE_CLASS_VOLTAGE},
	meter.QuantityEnergyForward: {"energy imported", "kWh", STATE_CLASS_TOTAL_INCREASING, DEVICE_CLASS_ENERGY},
	meter.QuantityEnergyReverse: {"energy exported", "kWh", STATE_CLASS_TOTAL_INCREASING, DEVICE_CLASS_ENERGY},
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("smappee_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "smappee2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Smappee bridge %s", md5HashShort(baseTopic)),
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Bridge state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}}
}

func MeterDevice(m *meter.Meter, viaDevice string) Device {
	return Device{
		Id:           fmt.Sprintf("smappee_meter_%s", md5HashShort(m.Service())),
		Manufacturer: "Smappee",
		Model:        meter.ProductName,
		Name:         fmt.Sprintf("Smappee meter %d", m.DeviceInstance()),
		ViaDevice:    viaDevice,
	}
}

// MeterSensors describes one sensor per measurement path of a meter: the
// per-line quantities of L1..L3 followed by the totals.
func MeterSensors(meterDevice Device, m *meter.Meter) []GenericSensor {
	var sensors []GenericSensor

	for phase := 0; phase < meter.PhaseCount; phase++ {
		for _, quantity := range meter.LineQuantities {
			path := meter.LinePath(phase, quantity)
			kind := quantityKinds[quantity]
			sensors = append(sensors, meterSensor(meterDevice, m, path,
				fmt.Sprintf("L%d %s", phase+1, kind.name), kind))
		}
	}

	sensors = append(sensors, meterSensor(meterDevice, m, meter.PathPower, "Total power", quantityKinds[meter.QuantityPower]))
	sensors = append(sensors, meterSensor(meterDevice, m, meter.PathEnergyForward, "Total energy imported", quantityKinds[meter.QuantityEnergyForward]))
	sensors = append(sensors, meterSensor(meterDevice, m, meter.PathEnergyReverse, "Total energy exported", quantityKinds[meter.QuantityEnergyReverse]))

	// only the first sensor carries the full device description
	for i := range sensors {
		if i > 0 {
			sensors[i].Device = IdDevice(meterDevice)
		}
	}
	return sensors
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func meterSensor(meterDevice Device, m *meter.Meter, path, name string, kind quantityKind) GenericSensor {
	id := SensorId(path)
	return GenericSensor{
		Device:            meterDevice,
		Id:                id,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              name,
		UniqueId:          uniqueId(meterDevice.Id, id),
		UnitOfMeasurement: kind.unit,
		StateClass:        kind.stateClass,
		DeviceClass:       kind.deviceClass,
		Service:           m.Service(),
		Path:              path,
	}
}

// SensorId turns a quantity path into a sensor id, /Ac/L1/Energy/Forward
// becoming ac_l1_energy_forward.
func SensorId(path string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", "_"))
}

func uniqueId(deviceId string, sensorId string) string {
	return fmt.Sprintf("%s_%s", deviceId, sensorId)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[0:8]
}
