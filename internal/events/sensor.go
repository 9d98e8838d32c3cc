package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE          = "bridge"
	SENSOR_ID_POWER_APPARENT        = "power_apparent"
	SENSOR_ID_POWER_ACTIVE          = "power_active"
	SENSOR_ID_POWER_REACTIVE        = "power_reactive"
	SENSOR_ID_POWER_FACTOR          = "power_factor"
	SENSOR_ID_GRID_FREQUENCY        = "grid_frequency"
	SENSOR_ID_ENERGY_IMPORTED       = "energy_imported"
	SENSOR_ID_ENERGY_EXPORTED       = "energy_exported"
	SENSOR_ID_ENERGY_BALANCE        = "energy_balance"
	SENSOR_ID_PHASE_VOLTAGE_FMT     = "%s_voltage"
	SENSOR_ID_PHASE_CURRENT_FMT     = "%s_current"
	SENSOR_ID_PHASE_POWER_FMT       = "%s_power_active"
	SENSOR_ID_LINE_VOLTAGE_FMT      = "%s_voltage"
	STATE_CLASS_MEASUREMENT         = "measurement"
	STATE_CLASS_TOTAL               = "total"
	STATE_CLASS_TOTAL_INCREASING    = "total_increasing"
	DEVICE_CLASS_CURRENT            = "current"
	DEVICE_CLASS_ENERGY             = "energy"
	DEVICE_CLASS_FREQUENCY          = "frequency"
	DEVICE_CLASS_POWER              = "power"
	DEVICE_CLASS_APPARENT_POWER     = "apparent_power"
	DEVICE_CLASS_REACTIVE_POWER     = "reactive_power"
	DEVICE_CLASS_POWER_FACTOR       = "power_factor"
	DEVICE_CLASS_VOLTAGE            = "voltage"
	DEVICE_CLASS_CONNECTIVITY       = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC         = "diagnostic"
	SENSOR_TYPE_SENSOR              = "sensor"
	SENSOR_TYPE_BINARY              = "binary_sensor"
)

var (
	phaseNames = []string{"l1", "l2", "l3"}
	lineNames  = []string{"l1_l2", "l2_l3", "l3_l1"}
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("pac2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "pac2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("pac2mqtt %s", md5HashShort(baseTopic)),
	}
}

// MeterDevice identifies a meter by model and connection address,
// the PAC float register map exposes no serial number.
func MeterDevice(model pac_modbus.Model, address string, unitId uint8, bridge Device) Device {
	key := fmt.Sprintf("%s/%d", address, unitId)
	return Device{
		Id:           fmt.Sprintf("pac_meter_%s", md5HashShort(key)),
		Manufacturer: "Siemens",
		Model:        fmt.Sprintf("SENTRON %s", model),
		Name:         fmt.Sprintf("SENTRON %s %s", model, md5HashShort(key)),
		ViaDevice:    bridge.Id,
	}
}

func MeterSensors(meterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Total power
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER_ACTIVE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Active power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER_ACTIVE),
		Decimals:          1,
	})
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER_APPARENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Apparent power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_APPARENT_POWER,
		UnitOfMeasurement: "VA",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER_APPARENT),
		Decimals:          1,
	})
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_POWER_REACTIVE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Reactive power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_REACTIVE_POWER,
		UnitOfMeasurement: "var",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_POWER_REACTIVE),
		Decimals:          1,
	})
	sensors = append(sensors, GenericSensor{
		Device:           meterDevice,
		Id:               SENSOR_ID_POWER_FACTOR,
		SensorType:       SENSOR_TYPE_SENSOR,
		Name:             "Power factor",
		StateClass:       STATE_CLASS_MEASUREMENT,
		DeviceClass:      DEVICE_CLASS_POWER_FACTOR,
		EnabledByDefault: optionalBool(false),
		UniqueId:         uniqueId(meterDevice.Id, SENSOR_ID_POWER_FACTOR),
		Decimals:         3,
	})

	// Grid frequency
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_GRID_FREQUENCY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid frequency",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_FREQUENCY,
		UnitOfMeasurement: "Hz",
		Icon:              "mdi:sine-wave",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_GRID_FREQUENCY),
		Decimals:          2,
	})

	// Phases
	for _, phase := range phaseNames {
		voltageId := fmt.Sprintf(SENSOR_ID_PHASE_VOLTAGE_FMT, phase)
		sensors = append(sensors, GenericSensor{
			Device:            meterDevice,
			Id:                voltageId,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              fmt.Sprintf("%s voltage", upper(phase)),
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_VOLTAGE,
			UnitOfMeasurement: "V",
			UniqueId:          uniqueId(meterDevice.Id, voltageId),
			Decimals:          1,
		})
		currentId := fmt.Sprintf(SENSOR_ID_PHASE_CURRENT_FMT, phase)
		sensors = append(sensors, GenericSensor{
			Device:            meterDevice,
			Id:                currentId,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              fmt.Sprintf("%s current", upper(phase)),
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_CURRENT,
			UnitOfMeasurement: "A",
			UniqueId:          uniqueId(meterDevice.Id, currentId),
			Decimals:          2,
		})
		powerId := fmt.Sprintf(SENSOR_ID_PHASE_POWER_FMT, phase)
		sensors = append(sensors, GenericSensor{
			Device:            meterDevice,
			Id:                powerId,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              fmt.Sprintf("%s active power", upper(phase)),
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_POWER,
			UnitOfMeasurement: "W",
			UniqueId:          uniqueId(meterDevice.Id, powerId),
			Decimals:          1,
		})
	}

	// Line to line voltages
	for _, line := range lineNames {
		id := fmt.Sprintf(SENSOR_ID_LINE_VOLTAGE_FMT, line)
		sensors = append(sensors, GenericSensor{
			Device:            meterDevice,
			Id:                id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              fmt.Sprintf("%s voltage", upper(line)),
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_VOLTAGE,
			UnitOfMeasurement: "V",
			EnabledByDefault:  optionalBool(false),
			UniqueId:          uniqueId(meterDevice.Id, id),
			Decimals:          1,
		})
	}

	// Energy counters of both tariffs
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_ENERGY_IMPORTED,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Energy imported",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_ENERGY_IMPORTED),
		Decimals:          3,
	})
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_ENERGY_EXPORTED,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Energy exported",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_ENERGY_EXPORTED),
		Decimals:          3,
	})
	sensors = append(sensors, GenericSensor{
		Device:            meterDevice,
		Id:                SENSOR_ID_ENERGY_BALANCE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Energy balance",
		StateClass:        STATE_CLASS_TOTAL,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		UniqueId:          uniqueId(meterDevice.Id, SENSOR_ID_ENERGY_BALANCE),
		Decimals:          3,
	})

	return sensors
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

// ReadingToSensorEvents maps a reading on the sensors of MeterSensors.
// Values the meter did not report are left out.
func ReadingToSensorEvents(reading *pac_modbus.Reading) []SensorUpdateEvent {
	var evs []SensorUpdateEvent
	add := func(id string, value float64, decimals uint) {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return
		}
		evs = append(evs, SensorUpdateEvent{
			GenericSensorUpdateEvent: GenericSensorUpdateEvent{Id: id},
			Value:                    value,
			Decimals:                 decimals,
		})
	}

	add(SENSOR_ID_POWER_ACTIVE, reading.Power.Active, 1)
	add(SENSOR_ID_POWER_APPARENT, reading.Power.Apparent, 1)
	add(SENSOR_ID_POWER_REACTIVE, reading.Power.Reactive(), 1)
	add(SENSOR_ID_POWER_FACTOR, reading.Power.PowerFactor(), 3)
	add(SENSOR_ID_GRID_FREQUENCY, reading.Frequency, 2)

	phases := []struct {
		voltage, current, active float64
	}{
		{reading.Phases.L1.Voltage, reading.Phases.L1.Current, reading.Phases.L1.Power.Active},
		{reading.Phases.L2.Voltage, reading.Phases.L2.Current, reading.Phases.L2.Power.Active},
		{reading.Phases.L3.Voltage, reading.Phases.L3.Current, reading.Phases.L3.Power.Active},
	}
	for i, phase := range phases {
		add(fmt.Sprintf(SENSOR_ID_PHASE_VOLTAGE_FMT, phaseNames[i]), phase.voltage, 1)
		add(fmt.Sprintf(SENSOR_ID_PHASE_CURRENT_FMT, phaseNames[i]), phase.current, 2)
		add(fmt.Sprintf(SENSOR_ID_PHASE_POWER_FMT, phaseNames[i]), phase.active, 1)
	}
	lines := []float64{reading.Phases.Line.L1L2, reading.Phases.Line.L2L3, reading.Phases.Line.L3L1}
	for i, v := range lines {
		add(fmt.Sprintf(SENSOR_ID_LINE_VOLTAGE_FMT, lineNames[i]), v, 1)
	}

	energy := reading.Energy()
	add(SENSOR_ID_ENERGY_IMPORTED, energy.Import.Active/1000, 3)
	add(SENSOR_ID_ENERGY_EXPORTED, energy.Export.Active/1000, 3)
	add(SENSOR_ID_ENERGY_BALANCE, reading.EnergyBalance().Active/1000, 3)

	return evs
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}

func upper(name string) string {
	return strings.ReplaceAll(strings.ToUpper(name), "_", "-")
}
