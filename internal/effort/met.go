// Package effort converts consumed food energy into physical-activity time
// equivalents.
package effort

import (
	"errors"
	"fmt"
)

// ErrInvalidMet is returned when a MET value falls outside (0, 25].
var ErrInvalidMet = errors.New("invalid MET value")

// Intensity buckets activities by metabolic cost.
type Intensity string

const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityVigorous Intensity = "vigorous"
)

// Met is a validated metabolic-equivalent scalar. 1 MET is roughly the
// energy cost of sitting quietly. Construct through NewMet or MustMet.
type Met struct {
	value float64
}

// NewMet validates and wraps a MET value.
func NewMet(value float64) (Met, error) {
	if value <= 0 || value > 25 {
		return Met{}, fmt.Errorf("%w: %v not in (0, 25]", ErrInvalidMet, value)
	}
	return Met{value: value}, nil
}

// MustMet wraps a MET value known to be valid, panicking otherwise. Intended
// for static catalog seeds.
func MustMet(value float64) Met {
	met, err := NewMet(value)
	if err != nil {
		panic(err)
	}
	return met
}

// Value returns the raw scalar.
func (m Met) Value() float64 { return m.value }

// IsLight reports a MET below 3.
func (m Met) IsLight() bool { return m.value < 3 }

// IsModerate reports a MET in [3, 6).
func (m Met) IsModerate() bool { return m.value >= 3 && m.value < 6 }

// IsVigorous reports a MET of 6 or more.
func (m Met) IsVigorous() bool { return m.value >= 6 }

// Intensity classifies the MET into light, moderate or vigorous.
func (m Met) Intensity() Intensity {
	switch {
	case m.IsLight():
		return IntensityLight
	case m.IsModerate():
		return IntensityModerate
	default:
		return IntensityVigorous
	}
}
