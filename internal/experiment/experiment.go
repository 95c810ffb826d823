package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/kinlab/internal/config"
	"github.com/san-kum/kinlab/internal/dynamo"
	"github.com/san-kum/kinlab/internal/metrics"
	"github.com/san-kum/kinlab/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Run evaluates all four curves. Configuration errors and cancellation fail
// the whole run; a curve that cannot be computed is recorded on its Curve
// and the others are still produced.
func (e *Experiment) Run(ctx context.Context) (*Comparison, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := e.cfg.Params
	mm, err := e.registry.GetModel(MichaelisMenten, p)
	if err != nil {
		return nil, err
	}
	fo, err := e.registry.GetModel(FirstOrder, p)
	if err != nil {
		return nil, err
	}
	if _, err := e.registry.GetIntegrator(e.cfg.Solver.Integrator); err != nil {
		return nil, err
	}

	times := e.cfg.Times()
	comp := &Comparison{
		Params:     p,
		Integrator: e.cfg.Solver.Integrator,
		Times:      times,
		Curves:     make(map[CurveID]*Curve, len(curveIDs)),
		Deviation:  make(map[string]float64),
		HalfLife: map[string]float64{
			MichaelisMenten: mm.HalfLife(p.C0),
			FirstOrder:      fo.HalfLife(p.C0),
		},
	}

	e.logger.Debug("starting comparison",
		zap.Float64("km", p.Km),
		zap.Float64("vmax", p.Vmax),
		zap.Float64("k", p.K()),
		zap.Float64("c0", p.C0),
		zap.Int("points", len(times)),
		zap.String("integrator", comp.Integrator),
	)

	pairs := []struct {
		dyn                   models.Kinetics
		analytical, numerical CurveID
	}{
		{mm, MMAnalytical, MMNumerical},
		{fo, FOAnalytical, FONumerical},
	}

	for _, pair := range pairs {
		comp.Curves[pair.analytical] = e.analytical(pair.analytical, pair.dyn, times)

		num, err := e.numerical(ctx, pair.numerical, pair.dyn, times)
		if err != nil {
			return nil, err
		}
		comp.Curves[pair.numerical] = num

		a, n := comp.Curves[pair.analytical], comp.Curves[pair.numerical]
		if a.OK() && n.OK() {
			comp.Deviation[pair.dyn.Name()] = metrics.MaxDeviation(a.Conc, n.Conc)
		}
	}

	for _, c := range comp.Failed() {
		e.logger.Warn("curve failed", zap.String("curve", c.ID.Key()), zap.Error(c.Err))
	}

	return comp, nil
}

func (e *Experiment) analytical(id CurveID, dyn models.Kinetics, times []float64) *Curve {
	curve := &Curve{ID: id}

	conc, err := dyn.ClosedForm(times, e.cfg.Params.C0)
	if err != nil {
		curve.Err = err
		return curve
	}

	curve.Conc = conc
	curve.Rates = models.Rates(dyn.Rate, conc)
	curve.Metrics = map[string]float64{
		"auc":          metrics.TrapezoidAUC(times, conc),
		"half_life":    metrics.InterpolatedHalfLife(times, conc),
		"monotonicity": metrics.CheckMonotone(conc),
	}

	e.logger.Debug("closed form evaluated", zap.String("curve", id.Key()))
	return curve
}

// numerical only returns an error when ctx is done.
func (e *Experiment) numerical(ctx context.Context, id CurveID, dyn models.Kinetics, times []float64) (*Curve, error) {
	curve := &Curve{ID: id}

	integ, err := e.registry.GetIntegrator(e.cfg.Solver.Integrator)
	if err != nil {
		curve.Err = err
		return curve, nil
	}

	requested := e.cfg.Solver.Tolerance
	tol := e.registry.Tolerance(e.cfg.Solver.Integrator, requested)
	if tol != requested {
		e.logger.Info("tolerance raised to the integrator's floor",
			zap.String("integrator", e.cfg.Solver.Integrator),
			zap.Float64("requested", requested),
			zap.Float64("tolerance", tol),
		)
	}

	simCfg := dynamo.DefaultConfig()
	simCfg.Tolerance = tol
	simCfg.MaxSteps = e.cfg.Solver.MaxSteps

	sim := dynamo.New(dyn, integ, simCfg)
	var mono *metrics.Monotonicity
	for _, m := range e.registry.DefaultMetrics() {
		if mm, ok := m.(*metrics.Monotonicity); ok {
			mono = mm
		}
		sim.AddMetric(m)
	}
	if e.logger.Core().Enabled(zapcore.DebugLevel) {
		sim.AddObserver(&sampleLogger{logger: e.logger.With(zap.String("curve", id.Key()))})
	}

	result, err := sim.Run(ctx, dynamo.State{e.cfg.Params.C0}, times)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		curve.Err = fmt.Errorf("%s integration: %w", dyn.Name(), err)
		return curve, nil
	}

	curve.Conc = result.Component(0)
	curve.Rates = models.Rates(dyn.Rate, curve.Conc)
	curve.Metrics = result.Metrics
	curve.Steps = result.StepsTaken

	e.logger.Debug("integration finished",
		zap.String("curve", id.Key()),
		zap.Int("steps", result.StepsTaken),
		zap.Int("rejected", result.Rejected),
		zap.Float64("final", curve.Conc[len(curve.Conc)-1]),
	)

	if mono != nil && mono.Violations() > 0 {
		e.logger.Warn("numerical curve is not monotone",
			zap.String("curve", id.Key()),
			zap.Int("violations", mono.Violations()),
			zap.Float64("monotonicity", mono.Value()),
		)
	}

	return curve, nil
}

// sampleLogger traces every output sample at debug level.
type sampleLogger struct {
	logger *zap.Logger
}

func (l *sampleLogger) OnSample(x dynamo.State, t float64) {
	l.logger.Debug("sample", zap.Float64("t", t), zap.Float64("c", x[0]))
}
