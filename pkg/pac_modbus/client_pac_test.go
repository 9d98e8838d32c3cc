package pac_modbus

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeMeter() *fakeRegisterClient {
	c := newFakeRegisterClient()
	// phase block, 15 floats starting at register 1
	phaseValues := []float32{
		230.5, 231, 229.5, // L-N
		400, 401, 399, // L-L
		2, 1.5, 1, // currents
		461, 346.5, 229.5, // apparent
		450, 340, 220, // active
	}
	for i, v := range phaseValues {
		c.setFloat32(REG_PHASES_START+uint16(i*2), v)
	}
	c.setFloat32(REG_FREQUENCY_START, 50)
	c.setFloat32(REG_POWER_START, 1037)
	c.setFloat32(REG_POWER_START+2, 1010)
	// energy block, 10 doubles starting at register 801
	energyValues := []float64{
		1000, 200, // active import T1, T2
		300, 40, // active export T1, T2
		50, 6, // reactive import T1, T2
		7, 8, // reactive export T1, T2
		1500, 250, // apparent T1, T2
	}
	for i, v := range energyValues {
		c.setFloat64(REG_ENERGY_START+uint16(i*4), v)
	}
	return c
}

func testReader(client registerClient) *PACFloatModbusReader {
	return newPACFloatModbusReader(PAC3200, client, zap.NewNop(), nil)
}

func TestReadPower(t *testing.T) {

	assert := assert.New(t)

	reader := testReader(fakeMeter())
	power, err := reader.GetPower()
	require.NoError(t, err)

	assert.Equal(1037.0, power.Apparent, "apparent")
	assert.Equal(1010.0, power.Active, "active")
	assert.InDelta(math.Sqrt(1037*1037-1010*1010), power.Reactive(), 1e-9, "reactive derived")
}

func TestReadPhases(t *testing.T) {

	assert := assert.New(t)

	reader := testReader(fakeMeter())
	phases, err := reader.GetPhases()
	require.NoError(t, err)

	assert.Equal(230.5, phases.L1.Voltage, "L1 voltage")
	assert.Equal(231.0, phases.L2.Voltage, "L2 voltage")
	assert.Equal(229.5, phases.L3.Voltage, "L3 voltage")
	assert.Equal(2.0, phases.L1.Current, "L1 current")
	assert.Equal(1.5, phases.L2.Current, "L2 current")
	assert.Equal(1.0, phases.L3.Current, "L3 current")
	assert.Equal(461.0, phases.L1.Power.Apparent, "L1 apparent")
	assert.Equal(340.0, phases.L2.Power.Active, "L2 active")
	assert.Equal(220.0, phases.L3.Power.Active, "L3 active")
	assert.Equal(400.0, phases.Line.L1L2, "L1-L2 voltage")
	assert.Equal(401.0, phases.Line.L2L3, "L2-L3 voltage")
	assert.Equal(399.0, phases.Line.L3L1, "L3-L1 voltage")
}

func TestReadPhasesDisconnected(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	meter.setFloat32(REG_PHASES_START+uint16(phaseApparentL2*2), float32(math.NaN()))
	meter.setFloat32(REG_PHASES_START+uint16(phaseActiveL2*2), float32(math.NaN()))

	phases, err := testReader(meter).GetPhases()
	require.NoError(t, err)

	// apparent is rebuilt from voltage and current, active stays unset
	assert.Equal(231.0*1.5, phases.L2.Power.Apparent, "L2 apparent")
	assert.True(math.IsNaN(phases.L2.Power.Active), "L2 active")
}

func TestReadFrequency(t *testing.T) {

	assert := assert.New(t)

	freq, err := testReader(fakeMeter()).GetFrequency()
	assert.NoError(err)
	assert.Equal(50.0, freq, "frequency")
}

func TestReadTariffs(t *testing.T) {

	assert := assert.New(t)

	tariffs, err := testReader(fakeMeter()).GetTariffs()
	require.NoError(t, err)

	assert.Equal(1500.0, tariffs.Tariff1.Import.Apparent, "T1 import apparent")
	assert.Equal(1000.0, tariffs.Tariff1.Import.Active, "T1 import active")
	assert.Equal(50.0, tariffs.Tariff1.Import.Reactive, "T1 import reactive")
	assert.Equal(1500.0, tariffs.Tariff1.Export.Apparent, "T1 export apparent")
	assert.Equal(300.0, tariffs.Tariff1.Export.Active, "T1 export active")
	assert.Equal(7.0, tariffs.Tariff1.Export.Reactive, "T1 export reactive")

	assert.Equal(250.0, tariffs.Tariff2.Import.Apparent, "T2 import apparent")
	assert.Equal(200.0, tariffs.Tariff2.Import.Active, "T2 import active")
	assert.Equal(6.0, tariffs.Tariff2.Import.Reactive, "T2 import reactive")
	assert.Equal(40.0, tariffs.Tariff2.Export.Active, "T2 export active")
	assert.Equal(8.0, tariffs.Tariff2.Export.Reactive, "T2 export reactive")
}

func TestRead(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	reading, err := testReader(meter).Read()
	require.NoError(t, err)

	assert.Equal([]uint16{REG_POWER_START, REG_PHASES_START, REG_FREQUENCY_START, REG_ENERGY_START}, meter.reads, "read order")
	assert.Equal(1010.0, reading.Power.Active, "power")
	assert.Equal(50.0, reading.Frequency, "frequency")

	energy := reading.Energy()
	assert.Equal(1200.0, energy.Import.Active, "total active import")
	assert.Equal(340.0, energy.Export.Active, "total active export")

	balance := reading.EnergyBalance()
	assert.Equal(860.0, balance.Active, "active balance")
	assert.Equal(41.0, balance.Reactive, "reactive balance")
	assert.Equal(0.0, balance.Apparent, "apparent balance")
}

func TestReadFailure(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	meter.readErr = errFakeTimeout

	reading, err := testReader(meter).Read()
	assert.Nil(reading)
	assert.ErrorIs(err, errFakeTimeout)
	assert.Contains(err.Error(), "register read failed")
	assert.Equal([]uint16{REG_POWER_START}, meter.reads, "stops at first failure")
}

func TestReadShortResponse(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	meter.truncate = true

	_, err := testReader(meter).GetTariffs()
	assert.ErrorIs(err, ErrShortResponse)
}

func TestClearTariff(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	reader := testReader(meter)

	tariffs, err := reader.ClearTariff(1)
	require.NoError(t, err)

	assert.Equal([]uint16{801, 809, 817, 825, 833}, meter.writes, "cleared counters")
	assert.Equal(0.0, tariffs.Tariff1.Import.Active, "T1 import active")
	assert.Equal(0.0, tariffs.Tariff1.Export.Reactive, "T1 export reactive")
	assert.Equal(0.0, tariffs.Tariff1.Import.Apparent, "T1 apparent")
	assert.Equal(200.0, tariffs.Tariff2.Import.Active, "T2 untouched")
	assert.Equal(250.0, tariffs.Tariff2.Import.Apparent, "T2 apparent untouched")
}

func TestClearTariff2(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	tariffs, err := testReader(meter).ClearTariff(2)
	require.NoError(t, err)

	assert.Equal([]uint16{805, 813, 821, 829, 837}, meter.writes, "cleared counters")
	assert.Equal(0.0, tariffs.Tariff2.Export.Active, "T2 export active")
	assert.Equal(1000.0, tariffs.Tariff1.Import.Active, "T1 untouched")
}

func TestClearInvalidTariff(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	_, err := testReader(meter).ClearTariff(3)
	assert.ErrorIs(err, ErrInvalidTariff)
	assert.Empty(meter.writes, "nothing written")
}

func TestUninitializedConnection(t *testing.T) {

	assert := assert.New(t)

	reader := &PACFloatModbusReader{}

	_, err := reader.GetPower()
	assert.ErrorIs(err, ErrConnectionUninitialized)
	_, err = reader.Read()
	assert.ErrorIs(err, ErrConnectionUninitialized)
	_, err = reader.ClearTariff(1)
	assert.ErrorIs(err, ErrConnectionUninitialized)
	assert.ErrorIs(reader.Open(), ErrConnectionUninitialized)
	assert.NoError(reader.Close(), "closing an uninitialized reader is a no-op")
}

func TestValidate(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	reader := testReader(meter)
	assert.NoError(reader.Validate())

	meter.setFloat32(REG_FREQUENCY_START, 0)
	assert.ErrorIs(reader.Validate(), ErrInvalidFrequency)

	meter.setFloat32(REG_FREQUENCY_START, float32(math.NaN()))
	assert.ErrorIs(reader.Validate(), ErrInvalidFrequency)
}

func TestOpenClose(t *testing.T) {

	assert := assert.New(t)

	meter := fakeMeter()
	reader := testReader(meter)

	assert.NoError(reader.Open())
	assert.True(meter.opened, "opened")
	assert.NoError(reader.Close())
	assert.True(meter.closed, "closed")
}

func TestInstrumentation(t *testing.T) {

	assert := assert.New(t)

	var calls []string
	inst := &ModbusInstrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			calls = append(calls, fnName)
		},
	}
	reader := newPACFloatModbusReader(PAC3200, fakeMeter(), zap.NewNop(), inst)

	_, err := reader.ClearTariff(2)
	assert.NoError(err)
	assert.Equal([]string{
		"WriteRegisters", "WriteRegisters", "WriteRegisters", "WriteRegisters", "WriteRegisters",
		"ReadInputRegisters",
	}, calls, "recorded calls")
}

func TestCreateReaders(t *testing.T) {

	assert := assert.New(t)

	logger := zap.NewNop()

	reader, err := CreatePAC3200ModbusReader("localhost", DEFAULT_TCP_PORT, time.Second, DRIVER_SIMONVETTER, logger, nil)
	assert.NoError(err)
	assert.Equal(PAC3200, reader.Model())

	reader, err = CreatePAC4200ModbusReader("localhost", DEFAULT_TCP_PORT, time.Second, DRIVER_GOBURROW, logger, nil)
	assert.NoError(err)
	assert.Equal(PAC4200, reader.Model())

	reader, err = CreatePAC3100ModbusReader(DefaultSerialConfig("/dev/ttyUSB0"), DEFAULT_UNIT_ID, time.Second, DRIVER_GOBURROW, logger, nil)
	assert.NoError(err)
	assert.Equal(PAC3100, reader.Model())

	_, err = CreatePACx200ModbusReader(PAC3100, "localhost", DEFAULT_TCP_PORT, DEFAULT_UNIT_ID, time.Second, DRIVER_SIMONVETTER, logger, nil)
	assert.ErrorIs(err, ErrUnknownModel)

	_, err = CreatePAC3200ModbusReader("localhost", DEFAULT_TCP_PORT, time.Second, Driver("pymodbus"), logger, nil)
	assert.ErrorIs(err, ErrUnknownDriver)
}
