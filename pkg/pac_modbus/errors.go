package pac_modbus

import "github.com/pkg/errors"

var (
	ErrConnectionUninitialized = errors.New("connection uninitialized")
	ErrInvalidTariff           = errors.New("invalid tariff, must be 1 or 2")
	ErrShortResponse           = errors.New("short register response")
	ErrUnknownDriver           = errors.New("unknown modbus driver")
	ErrUnknownModel            = errors.New("unknown PAC model")
	ErrInvalidFrequency        = errors.New("implausible grid frequency, not a PAC device?")
)
