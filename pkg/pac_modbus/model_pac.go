package pac_modbus

import (
	"fmt"
	"strings"

	"github.com/berfenger/pac2mqtt/pkg/electricity"
	"github.com/pkg/errors"
)

type Model string

const (
	PAC3100 Model = "PAC3100"
	PAC3200 Model = "PAC3200"
	PAC4200 Model = "PAC4200"
)

func ParseModel(s string) (Model, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PAC3100):
		return PAC3100, nil
	case string(PAC3200):
		return PAC3200, nil
	case string(PAC4200):
		return PAC4200, nil
	}
	return "", errors.Wrapf(ErrUnknownModel, "%q", s)
}

// IsTCP tells whether the model is reached through Modbus TCP (PACx200)
// instead of Modbus RTU.
func (m Model) IsTCP() bool {
	return m == PAC3200 || m == PAC4200
}

type LineVoltages struct {
	L1L2 float64
	L2L3 float64
	L3L1 float64
}

type Phases struct {
	L1 electricity.Phase
	L2 electricity.Phase
	L3 electricity.Phase
	// line to line voltages
	Line LineVoltages
}

type Tariffs struct {
	Tariff1 electricity.Tariff
	Tariff2 electricity.Tariff
}

// Reading is a complete snapshot of a PAC meter.
type Reading struct {
	Power     electricity.Power
	Phases    Phases
	Tariffs   Tariffs
	Frequency float64
}

// NewReading returns a reading with every value unset.
func NewReading() Reading {
	return Reading{
		Power: electricity.EmptyPower(),
		Phases: Phases{
			L1: electricity.EmptyPhase(),
			L2: electricity.EmptyPhase(),
			L3: electricity.EmptyPhase(),
			Line: LineVoltages{
				L1L2: electricity.Unset(),
				L2L3: electricity.Unset(),
				L3L1: electricity.Unset(),
			},
		},
		Tariffs: Tariffs{
			Tariff1: electricity.EmptyTariff(),
			Tariff2: electricity.EmptyTariff(),
		},
		Frequency: electricity.Unset(),
	}
}

// Energy sums the counters of both tariffs.
func (r Reading) Energy() electricity.Tariff {
	return r.Tariffs.Tariff1.Add(r.Tariffs.Tariff2)
}

func (r Reading) EnergyBalance() electricity.Energy {
	t1, t2 := r.Tariffs.Tariff1, r.Tariffs.Tariff2
	return t1.Import.Add(t2.Import).Sub(t1.Export).Sub(t2.Export)
}

func (r Reading) String() string {
	return fmt.Sprintf("<PAC: %s, L1: %s, L2: %s, L3: %s, %v Hz, T1: %s, T2: %s>",
		r.Power, r.Phases.L1, r.Phases.L2, r.Phases.L3, r.Frequency, r.Tariffs.Tariff1, r.Tariffs.Tariff2)
}

func (r Reading) AsMap(replaceNaN bool) map[string]any {
	return map[string]any{
		"power": r.Power.AsMap(replaceNaN),
		"phases": map[string]any{
			"L1": r.Phases.L1.AsMap(replaceNaN),
			"L2": r.Phases.L2.AsMap(replaceNaN),
			"L3": r.Phases.L3.AsMap(replaceNaN),
		},
		"line_voltages": map[string]any{
			"L1L2": electricity.ZeroIfNaN(r.Phases.Line.L1L2, replaceNaN),
			"L2L3": electricity.ZeroIfNaN(r.Phases.Line.L2L3, replaceNaN),
			"L3L1": electricity.ZeroIfNaN(r.Phases.Line.L3L1, replaceNaN),
		},
		"energy":  r.Energy().AsMap(replaceNaN),
		"balance": r.EnergyBalance().AsMap(replaceNaN),
		"tariffs": []any{
			r.Tariffs.Tariff1.AsMap(replaceNaN),
			r.Tariffs.Tariff2.AsMap(replaceNaN),
		},
		"frequency": electricity.ZeroIfNaN(r.Frequency, replaceNaN),
	}
}

type PACModbusReader interface {
	Open() error
	Close() error
	Validate() error
	Model() Model
	GetPower() (*electricity.Power, error)
	GetPhases() (*Phases, error)
	GetFrequency() (float64, error)
	GetTariffs() (*Tariffs, error)
	Read() (*Reading, error)
	ClearTariff(tariff int) (*Tariffs, error)
}
