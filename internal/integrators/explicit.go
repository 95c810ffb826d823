package integrators

import "github.com/san-kum/kinlab/internal/dynamo"

// Tableau is the Butcher tableau of an explicit Runge-Kutta method. A is
// strictly lower triangular: row i holds the weights of stages 0..i-1.
type Tableau struct {
	A [][]float64
	B []float64
	C []float64
}

var (
	eulerTableau = Tableau{
		A: [][]float64{{}},
		B: []float64{1},
		C: []float64{0},
	}

	midpointTableau = Tableau{
		A: [][]float64{{}, {0.5}},
		B: []float64{0, 1},
		C: []float64{0, 0.5},
	}

	rk4Tableau = Tableau{
		A: [][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
		B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		C: []float64{0, 0.5, 0.5, 1},
	}
)

// ExplicitRK is a fixed-step explicit Runge-Kutta stepper. Error control is
// left to the simulator, which step-doubles integrators without an
// embedded estimate.
type ExplicitRK struct {
	name    string
	tableau Tableau
	stages  []dynamo.State
	scratch dynamo.State
}

func NewExplicitRK(name string, tableau Tableau) *ExplicitRK {
	return &ExplicitRK{name: name, tableau: tableau}
}

func NewEuler() *ExplicitRK    { return NewExplicitRK("euler", eulerTableau) }
func NewMidpoint() *ExplicitRK { return NewExplicitRK("midpoint", midpointTableau) }
func NewRK4() *ExplicitRK      { return NewExplicitRK("rk4", rk4Tableau) }

func (r *ExplicitRK) Name() string { return r.name }

// Stages is the number of right-hand side evaluations per step.
func (r *ExplicitRK) Stages() int { return len(r.tableau.B) }

func (r *ExplicitRK) ensureScratch(n int) {
	if len(r.scratch) == n && len(r.stages) == r.Stages() {
		return
	}
	r.stages = make([]dynamo.State, r.Stages())
	for i := range r.stages {
		r.stages[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

func (r *ExplicitRK) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	for s, row := range r.tableau.A {
		copy(r.scratch, x)
		for j, a := range row {
			if a == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				r.scratch[i] += dt * a * r.stages[j][i]
			}
		}
		copy(r.stages[s], dyn.Derive(r.scratch, t+r.tableau.C[s]*dt))
	}

	result := x.Clone()
	for s, b := range r.tableau.B {
		if b == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			result[i] += dt * b * r.stages[s][i]
		}
	}
	return result
}
