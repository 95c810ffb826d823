package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	cfg        Config
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, cfg Config) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		cfg:        cfg,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 at times[0] and returns the state at every entry
// of times. Internal steps never cross an output time, so each sample is
// the integrator's own state rather than an interpolant.
func (s *Simulator) Run(ctx context.Context, x0 State, times []float64) (*Result, error) {
	if err := s.validate(x0, times); err != nil {
		return nil, err
	}

	result := &Result{
		States:  make([]State, 0, len(times)),
		Times:   make([]float64, 0, len(times)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := times[0]
	s.sample(result, x, t)

	dt := s.initialStep(times)
	for i := 1; i < len(times); i++ {
		target := times[i]

		for t < target {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
			}

			if result.StepsTaken+result.Rejected >= s.cfg.MaxSteps {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrMaxSteps}
			}

			h := dt
			if s.cfg.MaxDt > 0 {
				h = math.Min(h, s.cfg.MaxDt)
			}
			final := h >= target-t
			if final {
				h = target - t
			}

			newX, next, err := s.step(x, t, h)
			if errors.Is(err, ErrStepRejected) {
				result.Rejected++
				if next < s.cfg.MinDt {
					return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
				}
				dt = next
				continue
			}
			if err != nil {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: err}
			}

			if s.cfg.ValidateState && !newX.IsValid() {
				return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
			}

			x = newX
			if final {
				t = target
				// a clipped step says nothing about how large the next one may be
				dt = math.Max(dt, next)
			} else {
				t += h
				dt = next
			}
			result.StepsTaken++
		}

		s.sample(result, x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) sample(result *Result, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnSample(x, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}

func (s *Simulator) validate(x0 State, times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: no output times", ErrParameterBounds)
	}
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return fmt.Errorf("%w: output times must be strictly increasing (index %d)", ErrParameterBounds, i)
		}
	}
	if dim := s.dyn.StateDim(); len(x0) != dim {
		return fmt.Errorf("%w: state has %d components, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}
	if !x0.IsValid() {
		return ErrInvalidState
	}
	if !(s.cfg.Tolerance > 0) || math.IsInf(s.cfg.Tolerance, 1) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrParameterBounds, s.cfg.Tolerance)
	}
	if s.cfg.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrParameterBounds, s.cfg.MaxSteps)
	}
	return nil
}

func (s *Simulator) initialStep(times []float64) float64 {
	if len(times) < 2 {
		return s.cfg.MaxDt
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if s.cfg.MaxDt > 0 {
		dt = math.Min(dt, s.cfg.MaxDt)
	}
	return dt
}

func (s *Simulator) step(x State, t, dt float64) (State, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.dyn, x, t, dt, s.cfg.Tolerance)
	}

	// Step doubling for fixed-step integrators.
	x1 := s.integrator.Step(s.dyn, x, t, dt)
	xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
	x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

	scale := x2.Norm() + 1e-12
	errRatio := x1.Sub(x2).Norm() / scale / s.cfg.Tolerance

	if errRatio > 1 {
		return x2, dt / 2, ErrStepRejected
	}
	if errRatio < 0.1 {
		return x2, dt * 2, nil
	}
	return x2, dt, nil
}
