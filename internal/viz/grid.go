package viz

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/san-kum/kinlab/internal/experiment"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type lineStyle struct {
	color  color.Color
	dashed bool
}

// Colors follow the usual pairing: numerical dashed, analytical solid.
var lineStyles = map[experiment.CurveID]lineStyle{
	experiment.MMNumerical:  {color: color.RGBA{B: 255, A: 255}, dashed: true},
	experiment.MMAnalytical: {color: color.RGBA{A: 255}},
	experiment.FONumerical:  {color: color.RGBA{G: 128, A: 255}, dashed: true},
	experiment.FOAnalytical: {color: color.RGBA{R: 255, A: 255}},
}

type GridOptions struct {
	Width  vg.Length
	Height vg.Length
	Format string
}

func DefaultGridOptions() GridOptions {
	return GridOptions{
		Width:  12 * vg.Inch,
		Height: 12 * vg.Inch,
		Format: "png",
	}
}

// NewPanelPlot builds one chart of the grid. Failed curves are left out.
func NewPanelPlot(panel Panel, comp *experiment.Comparison, bounds Bounds) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = "Concentration (C)"
	p.Y.Label.Text = "Reaction Rate (v)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	for _, id := range panel.Curves {
		pts := points(comp.Curves[id])
		if len(pts) == 0 {
			continue
		}

		data := make(plotter.XYs, len(pts))
		for i, pt := range pts {
			data[i].X = pt.X
			data[i].Y = pt.Y
		}

		line, err := plotter.NewLine(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id.Label(), err)
		}
		style := lineStyles[id]
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = style.color
		if style.dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}

		p.Add(line)
		p.Legend.Add(id.Label(), line)
	}

	// Fixed after Add, which widens the axes to fit the data.
	p.X.Min, p.X.Max = 0, bounds.CMax
	p.Y.Min, p.Y.Max = 0, bounds.VMax

	return p, nil
}

// RenderGrid draws the four panels into a single image.
func RenderGrid(w io.Writer, comp *experiment.Comparison, opts GridOptions) error {
	bounds := BoundsFor(comp.Params)

	plots := make([][]*plot.Plot, 2)
	for row := range plots {
		plots[row] = make([]*plot.Plot, 2)
		for col := range plots[row] {
			p, err := NewPanelPlot(Panels[row*2+col], comp, bounds)
			if err != nil {
				return err
			}
			plots[row][col] = p
		}
	}

	img, err := draw.NewFormattedCanvas(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return err
	}

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, draw.New(img))
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	_, err = img.WriteTo(w)
	return err
}

// SaveGrid writes the grid image to path.
func SaveGrid(path string, comp *experiment.Comparison, opts GridOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return RenderGrid(f, comp, opts)
}
