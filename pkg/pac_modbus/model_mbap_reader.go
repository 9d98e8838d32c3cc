package pac_modbus

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ModbusClient struct {
	client     registerClient
	instrument []ModbusInstrument
}

type ModbusInstrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

func (reader ModbusClient) initialized() error {
	if reader.client == nil {
		return ErrConnectionUninitialized
	}
	return nil
}

func (reader ModbusClient) readInputRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	if err := reader.initialized(); err != nil {
		return nil, err
	}
	defer RecordTimer("ReadInputRegisters", reader.instrument)()
	regs, err := reader.client.ReadInputRegisters(addr, quantity)
	if err != nil {
		return nil, errors.Wrapf(err, "register read failed at %d", addr)
	}
	if len(regs) < int(quantity) {
		return nil, errors.Wrapf(ErrShortResponse, "register read failed at %d: got %d of %d registers", addr, len(regs), quantity)
	}
	return regs[:quantity], nil
}

func (reader ModbusClient) readFloat32s(addr uint16, quantity uint16) ([]float64, error) {
	regs, err := reader.readInputRegisters(addr, quantity)
	if err != nil {
		return nil, err
	}
	return float32sFromRegisters(regs)
}

func (reader ModbusClient) readFloat64s(addr uint16, quantity uint16) ([]float64, error) {
	regs, err := reader.readInputRegisters(addr, quantity)
	if err != nil {
		return nil, err
	}
	return float64sFromRegisters(regs)
}

func (reader ModbusClient) writeRegisters(addr uint16, values []uint16) error {
	if err := reader.initialized(); err != nil {
		return err
	}
	defer RecordTimer("WriteRegisters", reader.instrument)()
	return errors.Wrapf(reader.client.WriteRegisters(addr, values), "register write failed at %d", addr)
}

func RecordTimer(name string, instrument []ModbusInstrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}

func traceLoggerInstrumentation(logger *zap.Logger) *ModbusInstrument {
	if !logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}
	return &ModbusInstrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			logger.Debug("modbus call", zap.String("fn", fnName), zap.Int64("millis", readTime.Milliseconds()))
		},
	}
}
