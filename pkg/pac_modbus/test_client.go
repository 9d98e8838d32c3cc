package pac_modbus

import (
	"github.com/berfenger/pac2mqtt/pkg/electricity"
)

func CreateTestPACModbusReader() (PACModbusReader, error) {
	return &TestPACModbusReader{
		tariffs: testTariffs(),
	}, nil
}

type TestPACModbusReader struct {
	tariffs Tariffs
}

func testTariffs() Tariffs {
	return Tariffs{
		Tariff1: electricity.NewTariff(
			electricity.NewEnergy(2950120, 2770340, 512300),
			electricity.NewEnergy(2950120, 550220, 10400),
		),
		Tariff2: electricity.NewTariff(
			electricity.NewEnergy(1020500, 980150, 130200),
			electricity.NewEnergy(1020500, 120300, 2100),
		),
	}
}

func (reader *TestPACModbusReader) Open() error {
	return nil
}

func (reader *TestPACModbusReader) Close() error {
	return nil
}

func (reader *TestPACModbusReader) Validate() error {
	return nil
}

func (reader *TestPACModbusReader) Model() Model {
	return PAC3200
}

func (reader *TestPACModbusReader) GetPower() (*electricity.Power, error) {
	power := electricity.NewPower(2500, 2400)
	return &power, nil
}

func (reader *TestPACModbusReader) GetPhases() (*Phases, error) {
	return &Phases{
		L1: electricity.NewPhase(234.24, 4.5, 1054.08, 1010.5),
		L2: electricity.NewPhase(233.1, 3.2, 745.92, 720.3),
		L3: electricity.NewPhase(235.02, 3, 705.06, 669.2),
		Line: LineVoltages{
			L1L2: 405.1,
			L2L3: 404.3,
			L3L1: 406.2,
		},
	}, nil
}

func (reader *TestPACModbusReader) GetFrequency() (float64, error) {
	return 50.02, nil
}

func (reader *TestPACModbusReader) GetTariffs() (*Tariffs, error) {
	tariffs := reader.tariffs
	return &tariffs, nil
}

func (reader *TestPACModbusReader) Read() (*Reading, error) {
	power, _ := reader.GetPower()
	phases, _ := reader.GetPhases()
	freq, _ := reader.GetFrequency()
	tariffs, _ := reader.GetTariffs()
	return &Reading{
		Power:     *power,
		Phases:    *phases,
		Tariffs:   *tariffs,
		Frequency: freq,
	}, nil
}

func (reader *TestPACModbusReader) ClearTariff(tariff int) (*Tariffs, error) {
	zero := electricity.NewTariff(electricity.NewEnergy(0, 0, 0), electricity.NewEnergy(0, 0, 0))
	switch tariff {
	case 1:
		reader.tariffs.Tariff1 = zero
	case 2:
		reader.tariffs.Tariff2 = zero
	default:
		return nil, ErrInvalidTariff
	}
	return reader.GetTariffs()
}
