package metrics

import (
	"math"

	"github.com/san-kum/kinlab/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// AUC integrates concentration over time with the trapezoidal rule.
type AUC struct {
	name  string
	index int
	times []float64
	conc  []float64
}

func NewAUC(index int) *AUC {
	return &AUC{name: "auc", index: index}
}

func (a *AUC) Name() string { return a.name }

func (a *AUC) Observe(x dynamo.State, t float64) {
	if a.index >= len(x) {
		return
	}
	a.times = append(a.times, t)
	a.conc = append(a.conc, x[a.index])
}

func (a *AUC) Value() float64 {
	return TrapezoidAUC(a.times, a.conc)
}

func (a *AUC) Reset() {
	a.times = a.times[:0]
	a.conc = a.conc[:0]
}

// TrapezoidAUC is the area under (times, conc); zero for fewer than two samples.
func TrapezoidAUC(times, conc []float64) float64 {
	if len(times) < 2 || len(times) != len(conc) {
		return 0
	}
	return integrate.Trapezoidal(times, conc)
}

// HalfLife records the first time a trajectory falls to half its initial value.
type HalfLife struct {
	name  string
	index int
	times []float64
	conc  []float64
}

func NewHalfLife(index int) *HalfLife {
	return &HalfLife{name: "half_life", index: index}
}

func (h *HalfLife) Name() string { return h.name }

func (h *HalfLife) Observe(x dynamo.State, t float64) {
	if h.index >= len(x) {
		return
	}
	h.times = append(h.times, t)
	h.conc = append(h.conc, x[h.index])
}

func (h *HalfLife) Value() float64 {
	return InterpolatedHalfLife(h.times, h.conc)
}

func (h *HalfLife) Reset() {
	h.times = h.times[:0]
	h.conc = h.conc[:0]
}

// InterpolatedHalfLife finds the first crossing of conc[0]/2, interpolating
// linearly between samples. It returns NaN when the series never gets there.
func InterpolatedHalfLife(times, conc []float64) float64 {
	if len(conc) == 0 || len(times) != len(conc) || conc[0] <= 0 {
		return math.NaN()
	}
	half := conc[0] / 2
	for i := 1; i < len(conc); i++ {
		if conc[i] > half {
			continue
		}
		c0, c1 := conc[i-1], conc[i]
		t0, t1 := times[i-1], times[i]
		if c0 == c1 {
			return t1
		}
		return t0 + (c0-half)*(t1-t0)/(c0-c1)
	}
	return math.NaN()
}

// MaxDeviation is max |a_i − b_i|, the L∞ distance between two series.
func MaxDeviation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	return floats.Distance(a, b, math.Inf(1))
}
