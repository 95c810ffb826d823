package integrators

import (
	"testing"

	"github.com/san-kum/kinlab/internal/dynamo"
)

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	dyn := &saturable{}
	x := dynamo.State{50.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 1e-6)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &saturable{}
	x := dynamo.State{50.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 1e-6)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &saturable{}
	x := dynamo.State{50.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = integrator.StepAdaptive(dyn, x, 0, 1e-6, 1e-10)
	}
}
