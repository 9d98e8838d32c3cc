package electricity

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Unset marks a quantity the device did not report.
func Unset() float64 {
	return math.NaN()
}

func IsUnset(value float64) bool {
	return math.IsNaN(value)
}

// ZeroIfNaN returns 0 for NaN values when replace is set.
func ZeroIfNaN[T constraints.Float](value T, replace bool) T {
	if replace && math.IsNaN(float64(value)) {
		return 0
	}
	return value
}
