package main

import (
	"testing"

	"github.com/berfenger/pac2mqtt/internal/util"
	"github.com/berfenger/pac2mqtt/pkg/pac_modbus"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMeterAddress(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.Meter.Host = "10.0.0.5"
	assert.Equal("10.0.0.5:502", meterAddress(&cfg))

	cfg.Meter.Model = "PAC3100"
	cfg.Meter.SerialDevice = "/dev/ttyUSB0"
	assert.Equal("/dev/ttyUSB0", meterAddress(&cfg))
}

func TestCreateReader(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.Meter.Host = "10.0.0.5"
	reader, err := createReader(&cfg, zap.NewNop(), nil)
	assert.NoError(err)
	assert.Equal(pac_modbus.PAC3200, reader.Model())

	cfg.Meter.Model = "PAC4200"
	cfg.Meter.Driver = "goburrow"
	reader, err = createReader(&cfg, zap.NewNop(), nil)
	assert.NoError(err)
	assert.Equal(pac_modbus.PAC4200, reader.Model())

	cfg.Meter.Model = "PAC3100"
	cfg.Meter.SerialDevice = "/dev/ttyUSB0"
	cfg.Meter.BaudRate = 4800
	cfg.Meter.DataBits = 8
	cfg.Meter.Parity = "N"
	cfg.Meter.StopBits = 1
	reader, err = createReader(&cfg, zap.NewNop(), nil)
	assert.NoError(err)
	assert.Equal(pac_modbus.PAC3100, reader.Model())
}

func TestCreateReaderErrors(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.Meter.Model = "PAC2200"
	_, err := createReader(&cfg, zap.NewNop(), nil)
	assert.ErrorIs(err, pac_modbus.ErrUnknownModel)

	cfg = util.LoadTestConfig()
	cfg.Meter.Driver = "modbus4j"
	_, err = createReader(&cfg, zap.NewNop(), nil)
	assert.ErrorIs(err, pac_modbus.ErrUnknownDriver)
}
