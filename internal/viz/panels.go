package viz

import (
	"github.com/san-kum/kinlab/internal/experiment"
	"github.com/san-kum/kinlab/internal/models"
)

type Panel struct {
	Title  string
	Curves []experiment.CurveID
}

// Panels lists the grid row by row.
var Panels = []Panel{
	{
		Title:  "Michaelis-Menten (Numerical vs Analytical)",
		Curves: []experiment.CurveID{experiment.MMNumerical, experiment.MMAnalytical},
	},
	{
		Title:  "First-order (Numerical vs Analytical)",
		Curves: []experiment.CurveID{experiment.FONumerical, experiment.FOAnalytical},
	},
	{
		Title:  "Michaelis-Menten vs First-order (Analytical)",
		Curves: []experiment.CurveID{experiment.MMAnalytical, experiment.FOAnalytical},
	},
	{
		Title:  "Michaelis-Menten vs First-order (Numerical)",
		Curves: []experiment.CurveID{experiment.MMNumerical, experiment.FONumerical},
	},
}

// Bounds is the shared axis window.
type Bounds struct {
	CMax float64
	VMax float64
}

// BoundsFor derives the window from the parameters: concentration never
// exceeds C0 and the saturable rate never reaches Vmax.
func BoundsFor(p models.Params) Bounds {
	b := Bounds{CMax: p.C0, VMax: p.Vmax}
	if b.CMax <= 0 {
		b.CMax = 1
	}
	return b
}

type xy struct{ X, Y float64 }

func points(c *experiment.Curve) []xy {
	if !c.OK() {
		return nil
	}
	pts := make([]xy, len(c.Conc))
	for i := range c.Conc {
		pts[i] = xy{X: c.Conc[i], Y: c.Rates[i]}
	}
	return pts
}
