package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/kinlab/internal/dynamo"
	"github.com/san-kum/kinlab/internal/integrators"
	"github.com/san-kum/kinlab/internal/metrics"
	"github.com/san-kum/kinlab/internal/models"
)

const (
	MichaelisMenten = "michaelis-menten"
	FirstOrder      = "first-order"
)

type Registry struct {
	models      map[string]func(models.Params) (models.Kinetics, error)
	integrators map[string]integratorEntry
}

type integratorEntry struct {
	new func() dynamo.Integrator
	// floor is the tightest relative tolerance the integrator meets within
	// the default step budget; zero means no limit.
	floor float64
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(models.Params) (models.Kinetics, error)),
		integrators: make(map[string]integratorEntry),
	}

	r.models[MichaelisMenten] = func(p models.Params) (models.Kinetics, error) {
		return models.NewMichaelisMenten(p.Km, p.Vmax)
	}
	r.models[FirstOrder] = func(p models.Params) (models.Kinetics, error) {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		return models.NewFirstOrder(p.K())
	}

	// Step doubling on a first-order method needs steps of order sqrt(tol)/k.
	r.integrators["euler"] = integratorEntry{
		new:   func() dynamo.Integrator { return integrators.NewEuler() },
		floor: 1e-6,
	}
	r.integrators["midpoint"] = integratorEntry{
		new:   func() dynamo.Integrator { return integrators.NewMidpoint() },
		floor: 1e-8,
	}
	r.integrators["rk4"] = integratorEntry{
		new: func() dynamo.Integrator { return integrators.NewRK4() },
	}
	r.integrators["rk45"] = integratorEntry{
		new: func() dynamo.Integrator { return integrators.NewRK45() },
	}

	return r
}

func (r *Registry) GetModel(name string, p models.Params) (models.Kinetics, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(p)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	entry, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, r.ListIntegrators())
	}
	return entry.new(), nil
}

// Tolerance clamps a requested tolerance to what the named integrator can
// reach. Unknown names pass the request through.
func (r *Registry) Tolerance(name string, requested float64) float64 {
	entry, ok := r.integrators[name]
	if !ok || requested >= entry.floor {
		return requested
	}
	return entry.floor
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics are attached to every numerical run; analytical curves get
// the same quantities computed from their series.
func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewAUC(0),
		metrics.NewHalfLife(0),
		metrics.NewMonotonicity(0),
	}
}
