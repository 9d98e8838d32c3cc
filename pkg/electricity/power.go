package electricity

import (
	"fmt"
	"math"
	"time"
)

// Power holds an instantaneous power measurement.
// Apparent is in VA, Active in W and the reactive component in VAR.
type Power struct {
	Apparent float64
	Active   float64
	// reported reactive power, NaN when the device did not report it
	reactive    float64
	hasReactive bool
}

func NewPower(apparent, active float64) Power {
	return Power{
		Apparent: apparent,
		Active:   active,
	}
}

func NewPowerWithReactive(apparent, active, reactive float64) Power {
	return Power{
		Apparent:    apparent,
		Active:      active,
		reactive:    reactive,
		hasReactive: !math.IsNaN(reactive),
	}
}

// EmptyPower returns a Power with every component unset.
func EmptyPower() Power {
	return NewPower(Unset(), Unset())
}

// Reactive returns the reported reactive power or, when missing,
// derives it from apparent and active power (S² = P² + Q²).
func (p Power) Reactive() float64 {
	if p.hasReactive {
		return p.reactive
	}
	return math.Sqrt(p.Apparent*p.Apparent - p.Active*p.Active)
}

func (p Power) PowerFactor() float64 {
	return p.Active / p.Apparent
}

// Add sums apparent and active power. The reactive component of the result
// is always derived, since reactive powers of different loads do not add up.
func (p Power) Add(other Power) Power {
	return NewPower(p.Apparent+other.Apparent, p.Active+other.Active)
}

func (p Power) Sub(other Power) Power {
	return NewPower(p.Apparent-other.Apparent, p.Active-other.Active)
}

// Mul returns the energy transferred at this power over d.
func (p Power) Mul(d time.Duration) Energy {
	seconds := d.Seconds()
	return Energy{
		Apparent: p.Apparent * seconds / 3600,
		Active:   p.Active * seconds / 3600,
		Reactive: p.Reactive() * seconds / 3600,
	}
}

func (p Power) String() string {
	return fmt.Sprintf("<Power: %v VA, %v W, %v VAR>", p.Apparent, p.Active, p.Reactive())
}

func (p Power) AsMap(replaceNaN bool) map[string]any {
	return map[string]any{
		"apparent": ZeroIfNaN(p.Apparent, replaceNaN),
		"active":   ZeroIfNaN(p.Active, replaceNaN),
		"reactive": ZeroIfNaN(p.Reactive(), replaceNaN),
	}
}
