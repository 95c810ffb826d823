package experiment

import (
	"fmt"

	"github.com/san-kum/kinlab/internal/models"
)

type Method string

const (
	Analytical Method = "analytical"
	Numerical  Method = "numerical"
)

// CurveID names one of the four model × method combinations.
type CurveID int

const (
	MMAnalytical CurveID = iota
	MMNumerical
	FOAnalytical
	FONumerical
)

var curveIDs = []CurveID{MMAnalytical, MMNumerical, FOAnalytical, FONumerical}

func (id CurveID) Model() string {
	if id == MMAnalytical || id == MMNumerical {
		return MichaelisMenten
	}
	return FirstOrder
}

func (id CurveID) Method() Method {
	if id == MMAnalytical || id == FOAnalytical {
		return Analytical
	}
	return Numerical
}

// Label reads like "Michaelis-Menten (Numerical)".
func (id CurveID) Label() string {
	model := "Michaelis-Menten"
	if id.Model() == FirstOrder {
		model = "First-order"
	}
	method := "Analytical"
	if id.Method() == Numerical {
		method = "Numerical"
	}
	return fmt.Sprintf("%s (%s)", model, method)
}

// Key is a compact identifier such as "mm_numerical".
func (id CurveID) Key() string {
	prefix := "mm"
	if id.Model() == FirstOrder {
		prefix = "fo"
	}
	return prefix + "_" + string(id.Method())
}

// Curve is one concentration trajectory and its rates. A failed curve keeps
// its error and no data.
type Curve struct {
	ID      CurveID
	Conc    []float64
	Rates   []float64
	Metrics map[string]float64
	Steps   int
	Err     error
}

func (c *Curve) OK() bool {
	return c != nil && c.Err == nil
}

type Comparison struct {
	Params     models.Params
	Integrator string
	Times      []float64
	Curves     map[CurveID]*Curve
	// Deviation is max |ΔC| between analytical and numerical, per model.
	Deviation map[string]float64
	// HalfLife is the closed-form half-life, per model.
	HalfLife map[string]float64
}

// Ordered returns the curves in a fixed order, skipping missing ones.
func (c *Comparison) Ordered() []*Curve {
	out := make([]*Curve, 0, len(curveIDs))
	for _, id := range curveIDs {
		if curve, ok := c.Curves[id]; ok {
			out = append(out, curve)
		}
	}
	return out
}

func (c *Comparison) Failed() []*Curve {
	var out []*Curve
	for _, curve := range c.Ordered() {
		if !curve.OK() {
			out = append(out, curve)
		}
	}
	return out
}
