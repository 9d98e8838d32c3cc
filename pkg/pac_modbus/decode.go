package pac_modbus

import (
	"math"

	"github.com/pkg/errors"
)

// Registers hold IEEE-754 values high word first, each word big endian.

func float32sFromRegisters(regs []uint16) ([]float64, error) {
	if len(regs)%2 != 0 {
		return nil, errors.Wrapf(ErrShortResponse, "%d registers can not hold float32 values", len(regs))
	}
	values := make([]float64, 0, len(regs)/2)
	for i := 0; i < len(regs); i += 2 {
		bits := uint32(regs[i])<<16 | uint32(regs[i+1])
		values = append(values, float64(math.Float32frombits(bits)))
	}
	return values, nil
}

func float64sFromRegisters(regs []uint16) ([]float64, error) {
	if len(regs)%4 != 0 {
		return nil, errors.Wrapf(ErrShortResponse, "%d registers can not hold float64 values", len(regs))
	}
	values := make([]float64, 0, len(regs)/4)
	for i := 0; i < len(regs); i += 4 {
		bits := uint64(regs[i])<<48 | uint64(regs[i+1])<<32 | uint64(regs[i+2])<<16 | uint64(regs[i+3])
		values = append(values, math.Float64frombits(bits))
	}
	return values, nil
}
