package config

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/kinlab/internal/models"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKm         = 10.0
	DefaultVmax       = 50.0
	DefaultC0         = 50.0
	DefaultTStart     = 0.0
	DefaultTEnd       = 10.0
	DefaultPoints     = 100
	DefaultIntegrator = "rk45"
	DefaultTolerance  = 1e-10
	DefaultMaxSteps   = 100000
	DefaultOutput     = "kinetics.png"
	DefaultWidth      = 12.0
	DefaultHeight     = 12.0
)

var formats = map[string]bool{"png": true, "svg": true, "pdf": true}

type Config struct {
	Params models.Params `yaml:"params"`
	Grid   GridConfig    `yaml:"grid"`
	Solver SolverConfig  `yaml:"solver"`
	Output OutputConfig  `yaml:"output"`
}

type GridConfig struct {
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Points int     `yaml:"points"`
}

type SolverConfig struct {
	Integrator string  `yaml:"integrator"`
	Tolerance  float64 `yaml:"tolerance"`
	MaxSteps   int     `yaml:"max_steps"`
}

// OutputConfig sizes are in inches.
type OutputConfig struct {
	Path   string  `yaml:"path"`
	Format string  `yaml:"format"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Params: models.Params{
			Km:   DefaultKm,
			Vmax: DefaultVmax,
			C0:   DefaultC0,
		},
		Grid: GridConfig{
			Start:  DefaultTStart,
			End:    DefaultTEnd,
			Points: DefaultPoints,
		},
		Solver: SolverConfig{
			Integrator: DefaultIntegrator,
			Tolerance:  DefaultTolerance,
			MaxSteps:   DefaultMaxSteps,
		},
		Output: OutputConfig{
			Path:   DefaultOutput,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

// Load reads a yaml file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(DefaultConfig(), path)
}

// LoadOver reads a yaml file on top of base, which is modified in place.
func LoadOver(base *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Write encodes cfg as yaml, in the layout Load reads back.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.Grid.Points < 2 {
		return fmt.Errorf("grid needs at least 2 points, got %d", c.Grid.Points)
	}
	if !(c.Grid.End > c.Grid.Start) || !(c.Grid.Start >= 0) || math.IsInf(c.Grid.End, 1) {
		return fmt.Errorf("grid must satisfy 0 <= start < end, got [%g, %g]", c.Grid.Start, c.Grid.End)
	}
	if !finitePositive(c.Solver.Tolerance) {
		return fmt.Errorf("solver tolerance must be positive, got %g", c.Solver.Tolerance)
	}
	if c.Solver.MaxSteps <= 0 {
		return fmt.Errorf("solver max_steps must be positive, got %d", c.Solver.MaxSteps)
	}
	if !finitePositive(c.Output.Width) || !finitePositive(c.Output.Height) {
		return fmt.Errorf("output size must be positive, got %gx%g", c.Output.Width, c.Output.Height)
	}
	if f := c.ImageFormat(); !formats[f] {
		return fmt.Errorf("unsupported image format %q (png, svg, pdf)", f)
	}
	return nil
}

// finitePositive rejects NaN along with non-positive and infinite values.
func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Times is the evenly spaced output grid.
func (c *Config) Times() []float64 {
	return floats.Span(make([]float64, c.Grid.Points), c.Grid.Start, c.Grid.End)
}

// ImageFormat is the explicit format, else the output path's extension.
func (c *Config) ImageFormat() string {
	if c.Output.Format != "" {
		return strings.ToLower(c.Output.Format)
	}
	ext := strings.TrimPrefix(filepath.Ext(c.Output.Path), ".")
	if ext == "" {
		return "png"
	}
	return strings.ToLower(ext)
}
