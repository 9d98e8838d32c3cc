package electricity

import (
	"fmt"
	"time"
)

// Tariff groups the energy counters of one billing period.
type Tariff struct {
	Import Energy
	Export Energy
}

func NewTariff(energyImport, energyExport Energy) Tariff {
	return Tariff{
		Import: energyImport,
		Export: energyExport,
	}
}

func EmptyTariff() Tariff {
	return NewTariff(EmptyEnergy(), EmptyEnergy())
}

func (t Tariff) Add(other Tariff) Tariff {
	return NewTariff(t.Import.Add(other.Import), t.Export.Add(other.Export))
}

func (t Tariff) Sub(other Tariff) Tariff {
	return NewTariff(t.Import.Sub(other.Import), t.Export.Sub(other.Export))
}

// Balance is the net energy, positive when more was imported than exported.
func (t Tariff) Balance() Energy {
	return t.Import.Sub(t.Export)
}

// Div returns the average import and export power over d.
func (t Tariff) Div(d time.Duration) (Power, Power) {
	return t.Import.Div(d), t.Export.Div(d)
}

func (t Tariff) String() string {
	return fmt.Sprintf("<Tariff: import: %s, export: %s>", t.Import, t.Export)
}

func (t Tariff) AsMap(replaceNaN bool) map[string]any {
	return map[string]any{
		"import": t.Import.AsMap(replaceNaN),
		"export": t.Export.AsMap(replaceNaN),
	}
}
