package pac_modbus

import (
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
)

type simonvetterClient struct {
	client *modbus.ModbusClient
}

func newSimonvetterTCPClient(host string, port uint, unitId uint8, timeout time.Duration) (registerClient, error) {
	return newSimonvetterClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", host, port),
		Timeout: timeout,
	}, unitId)
}

func newSimonvetterRTUClient(serial SerialConfig, unitId uint8, timeout time.Duration) (registerClient, error) {
	var parity uint
	switch normalizeParity(serial.Parity) {
	case "E":
		parity = modbus.PARITY_EVEN
	case "O":
		parity = modbus.PARITY_ODD
	default:
		parity = modbus.PARITY_NONE
	}
	return newSimonvetterClient(&modbus.ClientConfiguration{
		URL:      fmt.Sprintf("rtu://%s", serial.Device),
		Speed:    serial.BaudRate,
		DataBits: serial.DataBits,
		Parity:   parity,
		StopBits: serial.StopBits,
		Timeout:  timeout,
	}, unitId)
}

func newSimonvetterClient(conf *modbus.ClientConfiguration, unitId uint8) (registerClient, error) {
	client, err := modbus.NewClient(conf)
	if err != nil {
		return nil, err
	}
	if err := client.SetUnitId(unitId); err != nil {
		return nil, err
	}
	return &simonvetterClient{client: client}, nil
}

func (c *simonvetterClient) Open() error {
	return c.client.Open()
}

func (c *simonvetterClient) Close() error {
	return c.client.Close()
}

func (c *simonvetterClient) ReadInputRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	return c.client.ReadRegisters(addr, quantity, modbus.INPUT_REGISTER)
}

func (c *simonvetterClient) WriteRegisters(addr uint16, values []uint16) error {
	return c.client.WriteRegisters(addr, values)
}
