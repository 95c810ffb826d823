package models

import (
	"math"

	"github.com/san-kum/kinlab/internal/dynamo"
)

type FirstOrder struct {
	K float64
}

func NewFirstOrder(k float64) (*FirstOrder, error) {
	if err := positive("k", k); err != nil {
		return nil, err
	}
	return &FirstOrder{K: k}, nil
}

// LinearLimit returns the first-order model that Michaelis-Menten kinetics
// reduce to when C << Km, with k = Vmax/Km.
func LinearLimit(m *MichaelisMenten) *FirstOrder {
	return &FirstOrder{K: m.Vmax / m.Km}
}

func (f *FirstOrder) Name() string { return "first-order" }

func (f *FirstOrder) StateDim() int { return 1 }

// Derive returns dC/dt = -k·C.
func (f *FirstOrder) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-f.K * x[0]}
}

func (f *FirstOrder) Rate(c float64) float64 {
	return f.K * c
}

// Concentration is C0·exp(-k·t).
func (f *FirstOrder) Concentration(t, c0 float64) float64 {
	return c0 * math.Exp(-f.K*t)
}

// ClosedForm evaluates Concentration at every time; it cannot fail.
func (f *FirstOrder) ClosedForm(times []float64, c0 float64) ([]float64, error) {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = f.Concentration(t, c0)
	}
	return out, nil
}

// HalfLife is ln2/k whatever the starting concentration.
func (f *FirstOrder) HalfLife(_ float64) float64 {
	return math.Ln2 / f.K
}
