package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/kinlab/internal/config"
	"github.com/san-kum/kinlab/internal/experiment"
	"github.com/san-kum/kinlab/internal/export"
	"github.com/san-kum/kinlab/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot/vg"
)

var (
	configFile string
	preset     string
	km         float64
	vmax       float64
	c0         float64
	tStart     float64
	tEnd       float64
	points     int
	integrator string
	tolerance  float64
	verbose    bool
	// run output
	outPath     string
	imageFormat string
	width       float64
	height      float64
	preview     bool
	// export
	exportFormat string
	// config
	savePath string
)

// main runs the kinlab CLI; with no subcommand it behaves like run.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flag variables are reset to their
// defaults on every call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kinlab",
		Short:        "michaelis-menten vs first-order elimination",
		SilenceUsage: true,
		RunE:         runComparison,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (yaml)")
	flags.StringVar(&preset, "preset", "", "use preset parameters")
	flags.Float64Var(&km, "km", config.DefaultKm, "michaelis constant Km")
	flags.Float64Var(&vmax, "vmax", config.DefaultVmax, "maximum rate Vmax")
	flags.Float64Var(&c0, "c0", config.DefaultC0, "initial concentration")
	flags.Float64Var(&tStart, "t-start", config.DefaultTStart, "grid start time")
	flags.Float64Var(&tEnd, "t-end", config.DefaultTEnd, "grid end time")
	flags.IntVar(&points, "points", config.DefaultPoints, "number of grid points")
	flags.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, midpoint, rk4, rk45)")
	flags.Float64Var(&tolerance, "tol", config.DefaultTolerance, "relative tolerance of the numerical solver")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addRunFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "compute all four curves and write the chart grid",
		Args:  cobra.NoArgs,
		RunE:  runComparison,
	}
	addRunFlags(runCmd)

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "print terminal charts and the summary",
		Args:  cobra.NoArgs,
		RunE:  runPreview,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "write curves to stdout as csv or json",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format (csv, json)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the resolved configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  runConfig,
	}
	configCmd.Flags().StringVar(&savePath, "save", "", "write the configuration to this file instead")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "presets:")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(out, "  %-16s %s\n", name, viz.Subtle.Render(p.Description))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, previewCmd, exportCmd, configCmd, presetsCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outPath, "out", "o", config.DefaultOutput, "output image path")
	cmd.Flags().StringVar(&imageFormat, "format", "", "image format (png, svg, pdf); defaults to the output extension")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "image width in inches")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "image height in inches")
	cmd.Flags().BoolVar(&preview, "preview", false, "also print terminal charts")
}

func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core, zap.AddCaller())
}

// resolveConfig layers defaults, preset, config file and explicit flags,
// each overriding the previous.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		cfg, err = config.LoadOver(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("km") {
		cfg.Params.Km = km
	}
	if changed("vmax") {
		cfg.Params.Vmax = vmax
	}
	if changed("c0") {
		cfg.Params.C0 = c0
	}
	if changed("t-start") {
		cfg.Grid.Start = tStart
	}
	if changed("t-end") {
		cfg.Grid.End = tEnd
	}
	if changed("points") {
		cfg.Grid.Points = points
	}
	if changed("integrator") {
		cfg.Solver.Integrator = integrator
	}
	if changed("tol") {
		cfg.Solver.Tolerance = tolerance
	}

	// output flags only exist on run
	if cmd.Flags().Lookup("out") != nil {
		if changed("out") {
			cfg.Output.Path = outPath
		}
		if changed("format") {
			cfg.Output.Format = imageFormat
		}
		if changed("width") {
			cfg.Output.Width = width
		}
		if changed("height") {
			cfg.Output.Height = height
		}
	}

	return cfg, cfg.Validate()
}

func compute(cmd *cobra.Command) (*experiment.Comparison, *config.Config, *zap.Logger, error) {
	logger := newLogger()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, logger, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	comp, err := experiment.New(cfg, logger).Run(ctx)
	if err != nil {
		return nil, nil, logger, err
	}
	return comp, cfg, logger, nil
}

func runComparison(cmd *cobra.Command, args []string) error {
	comp, cfg, logger, err := compute(cmd)
	defer logger.Sync()
	if err != nil {
		return err
	}

	opts := viz.GridOptions{
		Width:  vg.Length(cfg.Output.Width) * vg.Inch,
		Height: vg.Length(cfg.Output.Height) * vg.Inch,
		Format: cfg.ImageFormat(),
	}
	if err := viz.SaveGrid(cfg.Output.Path, comp, opts); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output.Path, err)
	}
	logger.Info("chart grid written", zap.String("path", cfg.Output.Path), zap.String("format", opts.Format))

	out := cmd.OutOrStdout()
	if preview {
		chart, err := viz.RenderPreview(comp, viz.DefaultPreviewOptions())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, chart)
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, viz.Summary(comp))
	fmt.Fprintf(out, "saved: %s\n", cfg.Output.Path)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	comp, _, logger, err := compute(cmd)
	defer logger.Sync()
	if err != nil {
		return err
	}

	chart, err := viz.RenderPreview(comp, viz.DefaultPreviewOptions())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chart)
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.Summary(comp))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	comp, _, logger, err := compute(cmd)
	defer logger.Sync()
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), exportFormat, comp)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if savePath != "" {
		if err := config.Save(savePath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved: %s\n", savePath)
		return nil
	}
	return config.Write(cmd.OutOrStdout(), cfg)
}
