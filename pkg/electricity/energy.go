package electricity

import (
	"fmt"
	"time"
)

// Energy holds accumulated energy: Apparent in VAh, Active in Wh, Reactive in VARh.
type Energy struct {
	Apparent float64
	Active   float64
	Reactive float64
}

func NewEnergy(apparent, active, reactive float64) Energy {
	return Energy{
		Apparent: apparent,
		Active:   active,
		Reactive: reactive,
	}
}

func EmptyEnergy() Energy {
	return NewEnergy(Unset(), Unset(), Unset())
}

func (e Energy) Add(other Energy) Energy {
	return Energy{
		Apparent: e.Apparent + other.Apparent,
		Active:   e.Active + other.Active,
		Reactive: e.Reactive + other.Reactive,
	}
}

func (e Energy) Sub(other Energy) Energy {
	return Energy{
		Apparent: e.Apparent - other.Apparent,
		Active:   e.Active - other.Active,
		Reactive: e.Reactive - other.Reactive,
	}
}

// Div returns the average power needed to accumulate e over d.
// A non-positive duration gives an unset Power.
func (e Energy) Div(d time.Duration) Power {
	if d <= 0 {
		return NewPowerWithReactive(Unset(), Unset(), Unset())
	}
	seconds := d.Seconds()
	return NewPowerWithReactive(
		e.Apparent*3600/seconds,
		e.Active*3600/seconds,
		e.Reactive*3600/seconds,
	)
}

func (e Energy) String() string {
	return fmt.Sprintf("<Energy: %v VAh, %v Wh, %v VARh>", e.Apparent, e.Active, e.Reactive)
}

func (e Energy) AsMap(replaceNaN bool) map[string]any {
	return map[string]any{
		"apparent": ZeroIfNaN(e.Apparent, replaceNaN),
		"active":   ZeroIfNaN(e.Active, replaceNaN),
		"reactive": ZeroIfNaN(e.Reactive, replaceNaN),
	}
}
