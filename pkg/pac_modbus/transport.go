package pac_modbus

import (
	"strings"

	"github.com/pkg/errors"
)

type Driver string

const (
	DRIVER_SIMONVETTER Driver = "simonvetter"
	DRIVER_GOBURROW    Driver = "goburrow"
)

func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(DRIVER_SIMONVETTER):
		return DRIVER_SIMONVETTER, nil
	case string(DRIVER_GOBURROW):
		return DRIVER_GOBURROW, nil
	}
	return "", errors.Wrapf(ErrUnknownDriver, "%q", s)
}

// registerClient is the subset of a Modbus master the PAC readers need.
type registerClient interface {
	Open() error
	Close() error
	ReadInputRegisters(addr uint16, quantity uint16) ([]uint16, error)
	WriteRegisters(addr uint16, values []uint16) error
}

type SerialConfig struct {
	Device   string
	BaudRate uint
	DataBits uint
	Parity   string // N, E, O
	StopBits uint
}

// DefaultSerialConfig returns the PAC3100 factory serial settings.
func DefaultSerialConfig(device string) SerialConfig {
	return SerialConfig{
		Device:   device,
		BaudRate: 4800,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
	}
}

func normalizeParity(parity string) string {
	switch strings.ToUpper(parity) {
	case "E", "EVEN":
		return "E"
	case "O", "ODD":
		return "O"
	}
	return "N"
}
