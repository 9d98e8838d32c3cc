package pac_modbus

import (
	"errors"
	"math"
)

// fakeRegisterClient is an in memory register bank.
type fakeRegisterClient struct {
	regs     map[uint16]uint16
	opened   bool
	closed   bool
	reads    []uint16
	writes   []uint16
	readErr  error
	truncate bool
}

func newFakeRegisterClient() *fakeRegisterClient {
	return &fakeRegisterClient{regs: map[uint16]uint16{}}
}

func (c *fakeRegisterClient) Open() error {
	c.opened = true
	return nil
}

func (c *fakeRegisterClient) Close() error {
	c.closed = true
	return nil
}

func (c *fakeRegisterClient) ReadInputRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	c.reads = append(c.reads, addr)
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.truncate {
		quantity = quantity / 2
	}
	out := make([]uint16, quantity)
	for i := range out {
		out[i] = c.regs[addr+uint16(i)]
	}
	return out, nil
}

func (c *fakeRegisterClient) WriteRegisters(addr uint16, values []uint16) error {
	c.writes = append(c.writes, addr)
	for i, v := range values {
		c.regs[addr+uint16(i)] = v
	}
	return nil
}

func (c *fakeRegisterClient) setFloat32(addr uint16, value float32) {
	bits := math.Float32bits(value)
	c.regs[addr] = uint16(bits >> 16)
	c.regs[addr+1] = uint16(bits)
}

func (c *fakeRegisterClient) setFloat64(addr uint16, value float64) {
	bits := math.Float64bits(value)
	c.regs[addr] = uint16(bits >> 48)
	c.regs[addr+1] = uint16(bits >> 32)
	c.regs[addr+2] = uint16(bits >> 16)
	c.regs[addr+3] = uint16(bits)
}

var errFakeTimeout = errors.New("fake timeout")
