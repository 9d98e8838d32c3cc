package electricity

import (
	"fmt"
	"math"
)

type Phase struct {
	Voltage float64
	Current float64
	Power   Power
}

// NewPhase builds a phase measurement. When apparent power is not reported
// it is computed from voltage and current.
func NewPhase(voltage, current, apparent, active float64) Phase {
	if math.IsNaN(apparent) && !math.IsNaN(voltage) && !math.IsNaN(current) {
		apparent = voltage * current
	}
	return Phase{
		Voltage: voltage,
		Current: current,
		Power:   NewPower(apparent, active),
	}
}

func EmptyPhase() Phase {
	return Phase{
		Voltage: Unset(),
		Current: Unset(),
		Power:   EmptyPower(),
	}
}

// Add combines two phases: voltages are averaged, currents and powers summed.
func (p Phase) Add(other Phase) Phase {
	return NewPhase(
		(p.Voltage+other.Voltage)/2,
		p.Current+other.Current,
		p.Power.Apparent+other.Power.Apparent,
		p.Power.Active+other.Power.Active,
	)
}

func (p Phase) Sub(other Phase) Phase {
	return NewPhase(
		(p.Voltage+other.Voltage)/2,
		p.Current-other.Current,
		p.Power.Apparent-other.Power.Apparent,
		p.Power.Active-other.Power.Active,
	)
}

func (p Phase) String() string {
	return fmt.Sprintf("<Phase: %v V, %v A, %s>", p.Voltage, p.Current, p.Power)
}

func (p Phase) AsMap(replaceNaN bool) map[string]any {
	return map[string]any{
		"power":   p.Power.AsMap(replaceNaN),
		"voltage": ZeroIfNaN(p.Voltage, replaceNaN),
		"current": ZeroIfNaN(p.Current, replaceNaN),
	}
}
