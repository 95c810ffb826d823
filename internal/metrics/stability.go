package metrics

import "github.com/san-kum/kinlab/internal/dynamo"

// Monotonicity scores how well a trajectory respects elimination-only
// dynamics: every sample non-negative and no larger than its predecessor.
// Value is the fraction of samples that comply, 1 for a clean curve.
type Monotonicity struct {
	name       string
	index      int
	prev       float64
	violations int
	samples    int
}

func NewMonotonicity(index int) *Monotonicity {
	return &Monotonicity{
		name:  "monotonicity",
		index: index,
	}
}

func (m *Monotonicity) Name() string {
	return m.name
}

func (m *Monotonicity) Observe(x dynamo.State, t float64) {
	if m.index >= len(x) {
		return
	}
	c := x[m.index]
	if c < 0 || (m.samples > 0 && c > m.prev) {
		m.violations++
	}
	m.prev = c
	m.samples++
}

func (m *Monotonicity) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *Monotonicity) Violations() int {
	return m.violations
}

func (m *Monotonicity) Reset() {
	m.prev = 0
	m.violations = 0
	m.samples = 0
}

// CheckMonotone applies Monotonicity to an already computed series.
func CheckMonotone(series []float64) float64 {
	m := NewMonotonicity(0)
	for _, c := range series {
		m.Observe(dynamo.State{c}, 0)
	}
	return m.Value()
}
