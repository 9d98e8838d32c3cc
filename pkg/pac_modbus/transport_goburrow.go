package pac_modbus

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"
)

type goburrowHandler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

type goburrowClient struct {
	handler goburrowHandler
	client  modbus.Client
}

func newGoburrowTCPClient(host string, port uint, unitId uint8, timeout time.Duration, logger *zap.Logger) registerClient {
	handler := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", host, port))
	handler.Timeout = timeout
	handler.IdleTimeout = 60 * time.Second
	handler.SlaveId = unitId
	if logger.Core().Enabled(zap.DebugLevel) {
		handler.Logger = zap.NewStdLog(logger)
	}
	return &goburrowClient{handler: handler, client: modbus.NewClient(handler)}
}

func newGoburrowRTUClient(serial SerialConfig, unitId uint8, timeout time.Duration, logger *zap.Logger) registerClient {
	handler := modbus.NewRTUClientHandler(serial.Device)
	handler.BaudRate = int(serial.BaudRate)
	handler.DataBits = int(serial.DataBits)
	handler.Parity = normalizeParity(serial.Parity)
	handler.StopBits = int(serial.StopBits)
	handler.SlaveId = unitId
	handler.Timeout = timeout
	if logger.Core().Enabled(zap.DebugLevel) {
		handler.Logger = zap.NewStdLog(logger)
	}
	return &goburrowClient{handler: handler, client: modbus.NewClient(handler)}
}

func (c *goburrowClient) Open() error {
	return c.handler.Connect()
}

func (c *goburrowClient) Close() error {
	return c.handler.Close()
}

func (c *goburrowClient) ReadInputRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	data, err := c.client.ReadInputRegisters(addr, quantity)
	if err != nil {
		return nil, err
	}
	regs := make([]uint16, len(data)/2)
	for i := range regs {
		regs[i] = binary.BigEndian.Uint16(data[i*2:])
	}
	return regs, nil
}

func (c *goburrowClient) WriteRegisters(addr uint16, values []uint16) error {
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.BigEndian.PutUint16(data[i*2:], v)
	}
	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(values)), data)
	return err
}
