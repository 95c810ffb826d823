package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type testDynamics struct{}

func (d *testDynamics) Derive(x State, t float64) State {
	return State{-x[0]}
}

func (d *testDynamics) StateDim() int { return 1 }

type testIntegrator struct{}

func (i *testIntegrator) Step(dyn System, x State, t float64, dt float64) State {
	k1 := dyn.Derive(x, t)
	mid := State{x[0] + 0.5*dt*k1[0]}
	k2 := dyn.Derive(mid, t+0.5*dt)
	return State{x[0] + dt*k2[0]}
}

// rejectingIntegrator refuses every step larger than limit.
type rejectingIntegrator struct {
	testIntegrator
	limit float64
}

func (r *rejectingIntegrator) StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error) {
	if dt > r.limit {
		return x, dt / 2, ErrStepRejected
	}
	return r.Step(dyn, x, t, dt), dt, nil
}

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	return out
}

func TestSimulatorRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tolerance = 1e-8
	sim := New(&testDynamics{}, &testIntegrator{}, cfg)

	times := linspace(0, 1, 11)
	result, err := sim.Run(context.Background(), State{1.0}, times)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}

	for i, tm := range result.Times {
		if tm != times[i] {
			t.Errorf("sample %d at t=%v, want %v", i, tm, times[i])
		}
	}

	finalState := result.States[len(result.States)-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(finalState-expected) > 1e-5 {
		t.Errorf("expected final state ~%.8f, got %.8f", expected, finalState)
	}
}

func TestSimulatorInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		x0    State
		times []float64
		want  error
	}{
		{"no times", DefaultConfig(), State{1}, nil, ErrParameterBounds},
		{"decreasing times", DefaultConfig(), State{1}, []float64{0, 1, 0.5}, ErrParameterBounds},
		{"repeated times", DefaultConfig(), State{1}, []float64{0, 0}, ErrParameterBounds},
		{"wrong dimension", DefaultConfig(), State{1, 2}, []float64{0, 1}, ErrDimensionMismatch},
		{"nan state", DefaultConfig(), State{math.NaN()}, []float64{0, 1}, ErrInvalidState},
		{"zero tolerance", Config{MaxSteps: 10}, State{1}, []float64{0, 1}, ErrParameterBounds},
		{"nan tolerance", Config{Tolerance: math.NaN(), MaxSteps: 10}, State{1}, []float64{0, 1}, ErrParameterBounds},
		{"infinite tolerance", Config{Tolerance: math.Inf(1), MaxSteps: 10}, State{1}, []float64{0, 1}, ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(&testDynamics{}, &testIntegrator{}, tt.cfg)
			_, err := sim.Run(context.Background(), tt.x0, tt.times)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSimulatorStepTooSmall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinDt = 1e-3
	sim := New(&testDynamics{}, &rejectingIntegrator{limit: 1e-6}, cfg)

	_, err := sim.Run(context.Background(), State{1}, []float64{0, 1})
	if !errors.Is(err, ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}

	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *SimulationError, got %T", err)
	}
	if simErr.Time != 0 {
		t.Errorf("expected failure at t=0, got %v", simErr.Time)
	}
}

func TestSimulatorMaxSteps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 5
	cfg.MaxDt = 0.01
	sim := New(&testDynamics{}, &rejectingIntegrator{limit: 1}, cfg)

	_, err := sim.Run(context.Background(), State{1}, []float64{0, 1})
	if !errors.Is(err, ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(&testDynamics{}, &testIntegrator{}, DefaultConfig())
	_, err := sim.Run(ctx, State{1}, []float64{0, 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(x State, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, DefaultConfig())

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), State{1.0}, linspace(0, 1, 11))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

type recordingObserver struct {
	times []float64
}

func (o *recordingObserver) OnSample(x State, t float64) {
	o.times = append(o.times, t)
}

func TestSimulatorObservers(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, DefaultConfig())

	obs := &recordingObserver{}
	sim.AddObserver(obs)

	times := linspace(0, 1, 6)
	if _, err := sim.Run(context.Background(), State{1.0}, times); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(obs.times) != len(times) {
		t.Fatalf("expected %d samples, got %d", len(times), len(obs.times))
	}
	for i := range times {
		if obs.times[i] != times[i] {
			t.Errorf("sample %d at t=%v, want %v", i, obs.times[i], times[i])
		}
	}
}
