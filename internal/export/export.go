// Package export writes a comparison as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/kinlab/internal/experiment"
	"github.com/san-kum/kinlab/internal/models"
)

var Formats = []string{"csv", "json"}

type CurveData struct {
	Key           string             `json:"key"`
	Label         string             `json:"label"`
	Model         string             `json:"model"`
	Method        string             `json:"method"`
	Concentration []float64          `json:"concentration,omitempty"`
	Rates         []float64          `json:"rates,omitempty"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Steps         int                `json:"steps,omitempty"`
	Error         string             `json:"error,omitempty"`
}

type ExportData struct {
	Params     models.Params      `json:"params"`
	K          float64            `json:"k"`
	Integrator string             `json:"integrator"`
	Times      []float64          `json:"times"`
	Curves     []CurveData        `json:"curves"`
	HalfLife   map[string]float64 `json:"half_life"`
	Deviation  map[string]float64 `json:"max_deviation,omitempty"`
}

// finite drops NaN and infinite entries, which JSON cannot carry.
func finite(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func NewExportData(comp *experiment.Comparison) ExportData {
	data := ExportData{
		Params:     comp.Params,
		K:          comp.Params.K(),
		Integrator: comp.Integrator,
		Times:      comp.Times,
		HalfLife:   finite(comp.HalfLife),
		Deviation:  finite(comp.Deviation),
	}

	for _, c := range comp.Ordered() {
		cd := CurveData{
			Key:    c.ID.Key(),
			Label:  c.ID.Label(),
			Model:  c.ID.Model(),
			Method: string(c.ID.Method()),
		}
		if c.OK() {
			cd.Concentration = c.Conc
			cd.Rates = c.Rates
			cd.Metrics = finite(c.Metrics)
			cd.Steps = c.Steps
		} else {
			cd.Error = c.Err.Error()
		}
		data.Curves = append(data.Curves, cd)
	}
	return data
}

func WriteJSON(w io.Writer, comp *experiment.Comparison) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(comp))
}

// WriteCSV writes one row per output time: the time, then concentration
// and rate for each curve. Columns of a failed curve are left empty.
func WriteCSV(w io.Writer, comp *experiment.Comparison) error {
	cw := csv.NewWriter(w)

	curves := comp.Ordered()
	header := []string{"time"}
	for _, c := range curves {
		header = append(header, "c_"+c.ID.Key(), "v_"+c.ID.Key())
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, t := range comp.Times {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, c := range curves {
			if !c.OK() || i >= len(c.Conc) {
				row = append(row, "", "")
				continue
			}
			row = append(row,
				strconv.FormatFloat(c.Conc[i], 'g', -1, 64),
				strconv.FormatFloat(c.Rates[i], 'g', -1, 64),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func Write(w io.Writer, format string, comp *experiment.Comparison) error {
	switch format {
	case "csv":
		return WriteCSV(w, comp)
	case "json":
		return WriteJSON(w, comp)
	default:
		return fmt.Errorf("unknown export format: %s (available: csv, json)", format)
	}
}
