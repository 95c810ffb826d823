package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/kinlab/internal/experiment"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var seriesColors = map[experiment.CurveID]asciigraph.AnsiColor{
	experiment.MMNumerical:  asciigraph.Blue,
	experiment.MMAnalytical: asciigraph.Default,
	experiment.FONumerical:  asciigraph.Green,
	experiment.FOAnalytical: asciigraph.Red,
}

type PreviewOptions struct {
	Width  int
	Height int
}

func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Width: 60, Height: 12}
}

// Resample maps a rate curve onto width evenly spaced concentrations in
// [0, cmax]. Concentrations outside the sampled range become NaN, which
// asciigraph leaves blank.
func Resample(conc, rates []float64, cmax float64, width int) ([]float64, error) {
	if len(conc) != len(rates) {
		return nil, fmt.Errorf("length mismatch: %d concentrations, %d rates", len(conc), len(rates))
	}
	if width < 2 {
		return nil, fmt.Errorf("width must be at least 2, got %d", width)
	}

	// Walk backwards so concentration increases, keeping strictly
	// increasing abscissae only.
	xs := make([]float64, 0, len(conc))
	ys := make([]float64, 0, len(conc))
	for i := len(conc) - 1; i >= 0; i-- {
		if math.IsNaN(conc[i]) || math.IsNaN(rates[i]) {
			continue
		}
		if len(xs) > 0 && conc[i] <= xs[len(xs)-1] {
			continue
		}
		xs = append(xs, conc[i])
		ys = append(ys, rates[i])
	}

	grid := floats.Span(make([]float64, width), 0, cmax)
	out := make([]float64, width)
	if len(xs) < 2 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}

	lo, hi := xs[0], xs[len(xs)-1]
	for i, c := range grid {
		if c < lo || c > hi {
			out[i] = math.NaN()
			continue
		}
		out[i] = pl.Predict(c)
	}
	return out, nil
}

// RenderPanel draws one grid panel as an ASCII chart.
func RenderPanel(panel Panel, comp *experiment.Comparison, opts PreviewOptions) (string, error) {
	bounds := BoundsFor(comp.Params)

	var (
		series  [][]float64
		colors  []asciigraph.AnsiColor
		legends []string
	)
	for _, id := range panel.Curves {
		c := comp.Curves[id]
		if !c.OK() {
			continue
		}
		data, err := Resample(c.Conc, c.Rates, bounds.CMax, opts.Width)
		if err != nil {
			return "", fmt.Errorf("%s: %w", id.Label(), err)
		}
		for i, v := range data {
			if v > bounds.VMax {
				data[i] = math.NaN()
			}
		}
		series = append(series, data)
		colors = append(colors, seriesColors[id])
		legends = append(legends, id.Label())
	}

	if len(series) == 0 {
		return fmt.Sprintf("%s\n  (no data)\n", panel.Title), nil
	}

	caption := fmt.Sprintf("%s  (C: 0 → %.4g)", panel.Title, bounds.CMax)
	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(bounds.VMax),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(caption),
	), nil
}

// RenderPreview draws all four panels one under another.
func RenderPreview(comp *experiment.Comparison, opts PreviewOptions) (string, error) {
	var out string
	for i, panel := range Panels {
		chart, err := RenderPanel(panel, comp, opts)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += "\n\n"
		}
		out += chart
	}
	return out, nil
}
