package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kinlab/internal/config"
	"github.com/san-kum/kinlab/internal/dynamo"
	"github.com/san-kum/kinlab/internal/experiment"
	"github.com/san-kum/kinlab/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Comparison", func() {
	var (
		cfg  *config.Config
		comp *experiment.Comparison
	)

	run := func() {
		var err error
		comp, err = experiment.New(cfg, nil).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		cfg = config.DefaultConfig()
	})

	Context("with the default parameter set", func() {
		BeforeEach(run)

		It("produces four curves aligned with the time grid", func() {
			Expect(comp.Times).To(HaveLen(100))
			Expect(comp.Ordered()).To(HaveLen(4))
			Expect(comp.Failed()).To(BeEmpty())
			for _, c := range comp.Ordered() {
				Expect(c.Conc).To(HaveLen(100), c.ID.Label())
				Expect(c.Rates).To(HaveLen(100), c.ID.Label())
			}
		})

		It("starts every curve at C0", func() {
			for _, c := range comp.Ordered() {
				Expect(c.Conc[0]).To(BeNumerically("~", 50, 1e-9), c.ID.Label())
			}
			Expect(comp.Curves[experiment.MMAnalytical].Rates[0]).To(BeNumerically("~", 41.667, 1e-3))
			Expect(comp.Curves[experiment.FOAnalytical].Rates[0]).To(BeNumerically("~", 250, 1e-9))
		})

		It("matches the Michaelis-Menten closed form within 1e-3", func() {
			a := comp.Curves[experiment.MMAnalytical].Conc
			n := comp.Curves[experiment.MMNumerical].Conc
			for i := range a {
				Expect(math.Abs(a[i]-n[i])).To(BeNumerically("<", 1e-3), "t=%v", comp.Times[i])
			}
			Expect(comp.Deviation).To(HaveKey(experiment.MichaelisMenten))
		})

		It("matches the first-order closed form within 1e-6", func() {
			a := comp.Curves[experiment.FOAnalytical].Conc
			n := comp.Curves[experiment.FONumerical].Conc
			for i := range a {
				Expect(math.Abs(a[i]-n[i])).To(BeNumerically("<", 1e-6), "t=%v", comp.Times[i])
			}
			Expect(comp.Deviation[experiment.FirstOrder]).To(BeNumerically("<", 1e-6))
		})

		It("keeps every series non-negative and non-increasing", func() {
			for _, c := range comp.Ordered() {
				for i, v := range c.Conc {
					Expect(v).To(BeNumerically(">=", 0), c.ID.Label())
					if i > 0 {
						Expect(v).To(BeNumerically("<=", c.Conc[i-1]), "%s at %d", c.ID.Label(), i)
					}
				}
				Expect(c.Metrics["monotonicity"]).To(Equal(1.0))
			}
		})

		It("shows the first-order curve vanishing while Michaelis-Menten lingers", func() {
			last := len(comp.Times) - 1
			Expect(comp.Curves[experiment.FOAnalytical].Conc[last]).To(BeNumerically("<", 1e-15))
			Expect(comp.Curves[experiment.FONumerical].Conc[last]).To(BeNumerically("<", 1e-15))
			Expect(comp.Curves[experiment.MMAnalytical].Conc[last]).To(BeNumerically(">", 0))
			Expect(comp.Curves[experiment.MMNumerical].Conc[last]).To(BeNumerically(">", 0))
		})

		It("bounds the Michaelis-Menten rate by Vmax and keeps first-order linear", func() {
			for _, id := range []experiment.CurveID{experiment.MMAnalytical, experiment.MMNumerical} {
				for _, v := range comp.Curves[id].Rates {
					Expect(v).To(BeNumerically("<", 50))
				}
			}
			fo := comp.Curves[experiment.FONumerical]
			for i, c := range fo.Conc {
				Expect(fo.Rates[i]).To(Equal(5 * c))
			}
		})

		It("reports half-lives consistent with the closed forms", func() {
			Expect(comp.HalfLife[experiment.MichaelisMenten]).To(BeNumerically("~", (25+10*math.Ln2)/50, 1e-12))
			Expect(comp.HalfLife[experiment.FirstOrder]).To(BeNumerically("~", math.Ln2/5, 1e-12))

			for _, c := range comp.Ordered() {
				Expect(c.Metrics["half_life"]).To(BeNumerically("~", comp.HalfLife[c.ID.Model()], 0.02), c.ID.Label())
			}
		})

		It("reports the first-order exposure C0/k", func() {
			Expect(comp.Curves[experiment.FOAnalytical].Metrics["auc"]).To(BeNumerically("~", 10, 0.5))
			Expect(comp.Curves[experiment.FONumerical].Metrics["auc"]).To(BeNumerically("~", comp.Curves[experiment.FOAnalytical].Metrics["auc"], 1e-6))
		})
	})

	Context("with a fixed-step integrator", func() {
		BeforeEach(func() {
			cfg.Solver.Integrator = "rk4"
			cfg.Solver.Tolerance = 1e-9
			run()
		})

		It("still tracks the closed form", func() {
			Expect(comp.Failed()).To(BeEmpty())
			Expect(comp.Deviation[experiment.MichaelisMenten]).To(BeNumerically("<", 1e-3))
		})
	})

	DescribeTable("with a low-order integrator at the default tolerance",
		func(name string) {
			cfg.Solver.Integrator = name
			run()

			Expect(comp.Failed()).To(BeEmpty())
			Expect(comp.Deviation[experiment.MichaelisMenten]).To(BeNumerically("<", 0.05))
			Expect(comp.Deviation[experiment.FirstOrder]).To(BeNumerically("<", 0.05))
			for _, id := range []experiment.CurveID{experiment.MMNumerical, experiment.FONumerical} {
				Expect(comp.Curves[id].Metrics["monotonicity"]).To(Equal(1.0), id.Label())
			}
		},
		Entry("euler", "euler"),
		Entry("midpoint", "midpoint"),
	)

	Context("with debug logging", func() {
		var logs *observer.ObservedLogs

		BeforeEach(func() {
			var core zapcore.Core
			core, logs = observer.New(zapcore.DebugLevel)
			cfg.Grid.Points = 20

			var err error
			comp, err = experiment.New(cfg, zap.New(core)).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("traces every numerical sample", func() {
			samples := logs.FilterMessage("sample")
			Expect(samples.Len()).To(Equal(2 * 20))
			Expect(samples.FilterField(zap.String("curve", "mm_numerical")).Len()).To(Equal(20))
			Expect(samples.FilterField(zap.String("curve", "fo_numerical")).Len()).To(Equal(20))
		})
	})

	Context("at info level", func() {
		It("does not trace samples", func() {
			core, logs := observer.New(zapcore.InfoLevel)
			_, err := experiment.New(cfg, zap.New(core)).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.FilterMessage("sample").Len()).To(BeZero())
		})
	})

	Context("when the integrator runs out of steps", func() {
		BeforeEach(func() {
			cfg.Solver.MaxSteps = 3
			run()
		})

		It("fails only the numerical curves", func() {
			Expect(comp.Failed()).To(HaveLen(2))
			Expect(comp.Curves[experiment.MMNumerical].Err).To(MatchError(dynamo.ErrMaxSteps))
			Expect(comp.Curves[experiment.FONumerical].Err).To(MatchError(dynamo.ErrMaxSteps))
			Expect(comp.Curves[experiment.MMAnalytical].OK()).To(BeTrue())
			Expect(comp.Curves[experiment.FOAnalytical].OK()).To(BeTrue())
			Expect(comp.Deviation).To(BeEmpty())
		})
	})

	Context("with invalid input", func() {
		It("rejects non-positive Km", func() {
			cfg.Params.Km = 0
			_, err := experiment.New(cfg, nil).Run(context.Background())
			Expect(err).To(MatchError(models.ErrInvalidParameter))
		})

		It("rejects a NaN tolerance", func() {
			cfg.Solver.Tolerance = math.NaN()
			_, err := experiment.New(cfg, nil).Run(context.Background())
			Expect(err).To(MatchError(ContainSubstring("tolerance")))
		})

		It("rejects an unknown integrator", func() {
			cfg.Solver.Integrator = "leapfrog"
			_, err := experiment.New(cfg, nil).Run(context.Background())
			Expect(err).To(MatchError(ContainSubstring("unknown integrator")))
		})

		It("stops when the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := experiment.New(cfg, nil).Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})
	})
})

var _ = Describe("Registry", func() {
	registry := experiment.NewRegistry()

	DescribeTable("tolerance floors",
		func(name string, requested, want float64) {
			Expect(registry.Tolerance(name, requested)).To(Equal(want))
		},
		Entry("euler is clamped", "euler", 1e-10, 1e-6),
		Entry("euler keeps a looser request", "euler", 1e-4, 1e-4),
		Entry("midpoint is clamped", "midpoint", 1e-10, 1e-8),
		Entry("rk4 is unlimited", "rk4", 1e-12, 1e-12),
		Entry("rk45 is unlimited", "rk45", 1e-10, 1e-10),
		Entry("unknown passes through", "leapfrog", 1e-10, 1e-10),
	)

	It("lists every integrator", func() {
		Expect(registry.ListIntegrators()).To(Equal([]string{"euler", "midpoint", "rk4", "rk45"}))
	})
})

var _ = Describe("CurveID", func() {
	DescribeTable("labels and keys",
		func(id experiment.CurveID, label, key string) {
			Expect(id.Label()).To(Equal(label))
			Expect(id.Key()).To(Equal(key))
		},
		Entry("mm analytical", experiment.MMAnalytical, "Michaelis-Menten (Analytical)", "mm_analytical"),
		Entry("mm numerical", experiment.MMNumerical, "Michaelis-Menten (Numerical)", "mm_numerical"),
		Entry("fo analytical", experiment.FOAnalytical, "First-order (Analytical)", "fo_analytical"),
		Entry("fo numerical", experiment.FONumerical, "First-order (Numerical)", "fo_numerical"),
	)
})
