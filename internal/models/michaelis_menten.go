package models

import (
	"fmt"
	"math"

	"github.com/san-kum/kinlab/internal/dynamo"
	"github.com/san-kum/kinlab/internal/lambertw"
)

// imagTolerance bounds the imaginary part of W accepted as rounding noise,
// relative to the magnitude of the real part.
const imagTolerance = 1e-9

// overflowLog is the log-argument above which exp would overflow and W is
// found from w + ln w = ln z instead.
const overflowLog = 700.0

type MichaelisMenten struct {
	Km   float64
	Vmax float64
}

func NewMichaelisMenten(km, vmax float64) (*MichaelisMenten, error) {
	if err := positive("km", km); err != nil {
		return nil, err
	}
	if err := positive("vmax", vmax); err != nil {
		return nil, err
	}
	return &MichaelisMenten{Km: km, Vmax: vmax}, nil
}

func (m *MichaelisMenten) Name() string { return "michaelis-menten" }

func (m *MichaelisMenten) StateDim() int { return 1 }

// Derive returns dC/dt = -Vmax·C/(Km+C).
func (m *MichaelisMenten) Derive(x dynamo.State, _ float64) dynamo.State {
	return dynamo.State{-m.Rate(x[0])}
}

// Rate is the elimination rate v(C) = Vmax·C/(Km+C).
func (m *MichaelisMenten) Rate(c float64) float64 {
	return m.Vmax * c / (m.Km + c)
}

// Concentration evaluates the closed-form solution C(t) = Km·W₀(z) with
// z = (C0/Km)·exp((C0 − Vmax·t)/Km).
func (m *MichaelisMenten) Concentration(t, c0 float64) (float64, error) {
	if c0 == 0 {
		return 0, nil
	}

	lnz := math.Log(c0/m.Km) + (c0-m.Vmax*t)/m.Km
	if math.IsNaN(lnz) {
		return math.NaN(), fmt.Errorf("%w: t=%g c0=%g", dynamo.ErrInvalidState, t, c0)
	}
	if lnz > overflowLog {
		return m.Km * wFromLog(lnz), nil
	}

	w, err := lambertw.W0(complex(math.Exp(lnz), 0))
	if err != nil {
		return math.NaN(), fmt.Errorf("t=%g: %w", t, err)
	}
	re, err := realPart(w)
	if err != nil {
		return math.NaN(), fmt.Errorf("t=%g: %w", t, err)
	}
	return m.Km * re, nil
}

// realPart accepts w as real when its imaginary part is rounding noise.
func realPart(w complex128) (float64, error) {
	if math.Abs(imag(w)) > imagTolerance*(1+math.Abs(real(w))) {
		return math.NaN(), fmt.Errorf("%w: W=%v", ErrComplexResult, w)
	}
	return real(w), nil
}

// ClosedForm evaluates Concentration at every time.
func (m *MichaelisMenten) ClosedForm(times []float64, c0 float64) ([]float64, error) {
	out := make([]float64, len(times))
	for i, t := range times {
		c, err := m.Concentration(t, c0)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// HalfLife is the time to fall from c0 to c0/2, (c0/2 + Km·ln2)/Vmax.
// Unlike first-order kinetics it depends on the starting concentration.
func (m *MichaelisMenten) HalfLife(c0 float64) float64 {
	return (c0/2 + m.Km*math.Ln2) / m.Vmax
}

// wFromLog solves w + ln w = L for large L by Newton iteration.
func wFromLog(l float64) float64 {
	w := l - math.Log(l)
	for i := 0; i < 50; i++ {
		dw := (w + math.Log(w) - l) / (1 + 1/w)
		w -= dw
		if math.Abs(dw) <= 1e-15*w {
			break
		}
	}
	return w
}
