package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/kinlab/internal/dynamo"
)

var (
	// ErrInvalidParameter marks a kinetic constant outside its domain.
	ErrInvalidParameter = fmt.Errorf("models: invalid parameter: %w", dynamo.ErrParameterBounds)

	// ErrComplexResult marks a closed-form evaluation whose Lambert W value
	// kept a non-negligible imaginary part.
	ErrComplexResult = errors.New("models: closed-form concentration is not real")
)

// Kinetics is an elimination law usable both as an ODE right-hand side and
// through its closed-form solution.
type Kinetics interface {
	dynamo.System
	Name() string
	Rate(c float64) float64
	ClosedForm(times []float64, c0 float64) ([]float64, error)
	HalfLife(c0 float64) float64
}

var (
	_ Kinetics = (*MichaelisMenten)(nil)
	_ Kinetics = (*FirstOrder)(nil)
)

// Params is the shared parameter set of both models.
type Params struct {
	Km   float64 `json:"km" yaml:"km"`
	Vmax float64 `json:"vmax" yaml:"vmax"`
	C0   float64 `json:"c0" yaml:"c0"`
}

// K is the first-order constant Vmax/Km, the low-concentration limit of
// the Michaelis-Menten law.
func (p Params) K() float64 {
	return p.Vmax / p.Km
}

func (p Params) Validate() error {
	if err := positive("km", p.Km); err != nil {
		return err
	}
	if err := positive("vmax", p.Vmax); err != nil {
		return err
	}
	if math.IsNaN(p.C0) || math.IsInf(p.C0, 0) || p.C0 < 0 {
		return fmt.Errorf("%w: c0 must be finite and non-negative, got %g", ErrInvalidParameter, p.C0)
	}
	return nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be finite and positive, got %g", ErrInvalidParameter, name, v)
	}
	return nil
}

// Rates maps a concentration series through a rate law.
func Rates(law func(float64) float64, conc []float64) []float64 {
	out := make([]float64, len(conc))
	for i, c := range conc {
		out[i] = law(c)
	}
	return out
}
