package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/kinlab/internal/experiment"
)

var (
	Frame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusFailed = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Sparkline renders values as block characters, sampled down to width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(SparkMid.Render(c))
		default:
			b.WriteString(SparkLow.Render(c))
		}
	}
	return b.String()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.6g", v)
}

func paramLine(label string, v float64) string {
	return MetricLabel.Render(label+" ") + MetricValue.Render(formatValue(v))
}

// Summary renders the parameters, one table row per curve and the
// closed-form reference values.
func Summary(comp *experiment.Comparison) string {
	p := comp.Params
	params := strings.Join([]string{
		paramLine("Km", p.Km),
		paramLine("Vmax", p.Vmax),
		paramLine("C0", p.C0),
		paramLine("k", p.K()),
	}, "   ")

	header := Title.Render("kinetics comparison") + "  " + Subtle.Render("integrator "+comp.Integrator)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))).
		Headers("curve", "C(end)", "AUC", "t½", "steps", "decay", "status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})

	for _, c := range comp.Ordered() {
		if !c.OK() {
			t.Row(c.ID.Label(), "-", "-", "-", "-", "", StatusFailed.Render("failed"))
			continue
		}
		steps := "-"
		if c.ID.Method() == experiment.Numerical {
			steps = fmt.Sprintf("%d", c.Steps)
		}
		t.Row(
			c.ID.Label(),
			formatValue(c.Conc[len(c.Conc)-1]),
			formatValue(c.Metrics["auc"]),
			formatValue(c.Metrics["half_life"]),
			steps,
			Sparkline(c.Conc, 16),
			StatusOK.Render("ok"),
		)
	}

	var refs []string
	for _, model := range []string{experiment.MichaelisMenten, experiment.FirstOrder} {
		line := MetricLabel.Render(model+" ") +
			MetricLabel.Render("t½ ") + MetricValue.Render(formatValue(comp.HalfLife[model]))
		if d, ok := comp.Deviation[model]; ok {
			line += "   " + MetricLabel.Render("max |ΔC| ") + MetricValue.Render(fmt.Sprintf("%.3g", d))
		}
		refs = append(refs, line)
	}

	var errs []string
	for _, c := range comp.Failed() {
		errs = append(errs, StatusFailed.Render(c.ID.Key()+": ")+Subtle.Render(c.Err.Error()))
	}

	parts := []string{header, params, t.Render(), strings.Join(refs, "\n")}
	if len(errs) > 0 {
		parts = append(parts, strings.Join(errs, "\n"))
	}
	return Frame.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
