// Package viz renders a [experiment.Comparison].
//
// The main output is a 2x2 grid of rate-vs-concentration charts written
// with gonum/plot:
//
//	┌───────────────────────────┬───────────────────────────┐
//	│ MM numerical vs analytical│ FO numerical vs analytical│
//	├───────────────────────────┼───────────────────────────┤
//	│ MM vs FO, analytical      │ MM vs FO, numerical       │
//	└───────────────────────────┴───────────────────────────┘
//
// Every panel uses the same fixed axes, concentration [0, C0] and rate
// [0, Vmax], so curves that leave that window are clipped rather than
// rescaling the panel. The same panels can be drawn in the terminal with
// asciigraph, next to a lipgloss summary table.
package viz
