package pac_modbus

import (
	"math"
	"time"

	"github.com/berfenger/pac2mqtt/pkg/electricity"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DEFAULT_TCP_PORT uint  = 502
	DEFAULT_UNIT_ID  uint8 = 1

	minPlausibleFrequency = 40
	maxPlausibleFrequency = 70
)

// PACFloatModbusReader reads the float/double measurement registers
// shared by the whole SENTRON PAC family.
type PACFloatModbusReader struct {
	ModbusClient
	model Model
}

// CreatePACx200ModbusReader connects to a PAC3200/PAC4200 through Modbus TCP.
func CreatePACx200ModbusReader(model Model, host string, port uint, unitId uint8, timeout time.Duration,
	driver Driver, logger *zap.Logger, instrumentation *ModbusInstrument) (PACModbusReader, error) {
	if !model.IsTCP() {
		return nil, errors.Wrapf(ErrUnknownModel, "%s is not reachable through Modbus TCP", model)
	}
	logger = logger.With(zap.String("target", string(model))).With(zap.String("host", host)).With(zap.Uint8("unit", unitId))

	var client registerClient
	var err error
	switch driver {
	case DRIVER_GOBURROW:
		client = newGoburrowTCPClient(host, port, unitId, timeout, logger)
	case DRIVER_SIMONVETTER:
		client, err = newSimonvetterTCPClient(host, port, unitId, timeout)
	default:
		err = errors.Wrapf(ErrUnknownDriver, "%q", driver)
	}
	if err != nil {
		return nil, err
	}
	return newPACFloatModbusReader(model, client, logger, instrumentation), nil
}

func CreatePAC3200ModbusReader(host string, port uint, timeout time.Duration, driver Driver,
	logger *zap.Logger, instrumentation *ModbusInstrument) (PACModbusReader, error) {
	return CreatePACx200ModbusReader(PAC3200, host, port, DEFAULT_UNIT_ID, timeout, driver, logger, instrumentation)
}

func CreatePAC4200ModbusReader(host string, port uint, timeout time.Duration, driver Driver,
	logger *zap.Logger, instrumentation *ModbusInstrument) (PACModbusReader, error) {
	return CreatePACx200ModbusReader(PAC4200, host, port, DEFAULT_UNIT_ID, timeout, driver, logger, instrumentation)
}

// CreatePAC3100ModbusReader connects to a PAC3100 through Modbus RTU.
func CreatePAC3100ModbusReader(serial SerialConfig, unitId uint8, timeout time.Duration, driver Driver,
	logger *zap.Logger, instrumentation *ModbusInstrument) (PACModbusReader, error) {
	logger = logger.With(zap.String("target", string(PAC3100))).With(zap.String("device", serial.Device)).With(zap.Uint8("unit", unitId))

	var client registerClient
	var err error
	switch driver {
	case DRIVER_GOBURROW:
		client = newGoburrowRTUClient(serial, unitId, timeout, logger)
	case DRIVER_SIMONVETTER:
		client, err = newSimonvetterRTUClient(serial, unitId, timeout)
	default:
		err = errors.Wrapf(ErrUnknownDriver, "%q", driver)
	}
	if err != nil {
		return nil, err
	}
	return newPACFloatModbusReader(PAC3100, client, logger, instrumentation), nil
}

func newPACFloatModbusReader(model Model, client registerClient, logger *zap.Logger, instrumentation *ModbusInstrument) *PACFloatModbusReader {
	// instrumentation
	var inst []ModbusInstrument
	logInst := traceLoggerInstrumentation(logger)
	if logInst != nil {
		inst = append(inst, *logInst)
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}
	return &PACFloatModbusReader{
		ModbusClient: ModbusClient{
			client:     client,
			instrument: inst,
		},
		model: model,
	}
}

func (reader *PACFloatModbusReader) Model() Model {
	return reader.model
}

func (reader *PACFloatModbusReader) Open() error {
	if err := reader.initialized(); err != nil {
		return err
	}
	return reader.client.Open()
}

func (reader *PACFloatModbusReader) Close() error {
	if reader.client == nil {
		return nil
	}
	return reader.client.Close()
}

func (reader *PACFloatModbusReader) Validate() error {
	freq, err := reader.GetFrequency()
	if err != nil {
		return err
	}
	if math.IsNaN(freq) || freq < minPlausibleFrequency || freq > maxPlausibleFrequency {
		return errors.Wrapf(ErrInvalidFrequency, "%v Hz", freq)
	}
	return nil
}

func (reader *PACFloatModbusReader) GetPower() (*electricity.Power, error) {
	values, err := reader.readFloat32s(REG_POWER_START, REG_POWER_COUNT)
	if err != nil {
		return nil, errors.Wrap(err, "read power")
	}
	power := electricity.NewPower(values[0], values[1])
	return &power, nil
}

// GetPhases reads the per phase values. The PAC reports phase powers as NaN
// unless all phases are connected, the total power stays valid though.
func (reader *PACFloatModbusReader) GetPhases() (*Phases, error) {
	values, err := reader.readFloat32s(REG_PHASES_START, REG_PHASES_COUNT)
	if err != nil {
		return nil, errors.Wrap(err, "read phases")
	}
	return &Phases{
		L1: electricity.NewPhase(values[phaseVoltageL1N], values[phaseCurrentL1], values[phaseApparentL1], values[phaseActiveL1]),
		L2: electricity.NewPhase(values[phaseVoltageL2N], values[phaseCurrentL2], values[phaseApparentL2], values[phaseActiveL2]),
		L3: electricity.NewPhase(values[phaseVoltageL3N], values[phaseCurrentL3], values[phaseApparentL3], values[phaseActiveL3]),
		Line: LineVoltages{
			L1L2: values[phaseVoltageL1L2],
			L2L3: values[phaseVoltageL2L3],
			L3L1: values[phaseVoltageL3L1],
		},
	}, nil
}

func (reader *PACFloatModbusReader) GetFrequency() (float64, error) {
	values, err := reader.readFloat32s(REG_FREQUENCY_START, REG_FREQUENCY_COUNT)
	if err != nil {
		return math.NaN(), errors.Wrap(err, "read frequency")
	}
	return values[0], nil
}

func (reader *PACFloatModbusReader) GetTariffs() (*Tariffs, error) {
	values, err := reader.readFloat64s(REG_ENERGY_START, REG_ENERGY_COUNT)
	if err != nil {
		return nil, errors.Wrap(err, "read energy")
	}
	return &Tariffs{
		Tariff1: electricity.NewTariff(
			electricity.NewEnergy(values[energyApparentT1], values[energyActiveImportT1], values[energyReactiveImportT1]),
			electricity.NewEnergy(values[energyApparentT1], values[energyActiveExportT1], values[energyReactiveExportT1]),
		),
		Tariff2: electricity.NewTariff(
			electricity.NewEnergy(values[energyApparentT2], values[energyActiveImportT2], values[energyReactiveImportT2]),
			electricity.NewEnergy(values[energyApparentT2], values[energyActiveExportT2], values[energyReactiveExportT2]),
		),
	}, nil
}

func (reader *PACFloatModbusReader) Read() (*Reading, error) {
	power, err := reader.GetPower()
	if err != nil {
		return nil, err
	}
	phases, err := reader.GetPhases()
	if err != nil {
		return nil, err
	}
	freq, err := reader.GetFrequency()
	if err != nil {
		return nil, err
	}
	tariffs, err := reader.GetTariffs()
	if err != nil {
		return nil, err
	}
	return &Reading{
		Power:     *power,
		Phases:    *phases,
		Tariffs:   *tariffs,
		Frequency: freq,
	}, nil
}

// ClearTariff zeroes every energy counter of the given tariff (1 or 2)
// and returns the counters as read back from the device.
func (reader *PACFloatModbusReader) ClearTariff(tariff int) (*Tariffs, error) {
	var start uint16
	switch tariff {
	case 1:
		start = REG_ENERGY_TARIFF_1_START
	case 2:
		start = REG_ENERGY_TARIFF_2_START
	default:
		return nil, errors.Wrapf(ErrInvalidTariff, "got %d", tariff)
	}
	if err := reader.initialized(); err != nil {
		return nil, err
	}
	for i := 0; i < ENERGY_COUNTERS_PER_TARIFF; i++ {
		addr := start + uint16(i)*REG_ENERGY_COUNTER_STRIDE
		if err := reader.writeRegisters(addr, []uint16{0, 0, 0, 0}); err != nil {
			return nil, errors.Wrapf(err, "clear tariff %d", tariff)
		}
	}
	return reader.GetTariffs()
}
