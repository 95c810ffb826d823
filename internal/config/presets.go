package config

import (
	"sort"

	"github.com/san-kum/kinlab/internal/models"
)

// Presets are parameter sets; grid and solver settings fall back to the defaults.
var Presets = map[string]Preset{
	"default": {
		Description: "Km=10, Vmax=50, C0=50: saturation at the start, first-order tail",
		Params:      models.Params{Km: 10, Vmax: 50, C0: 50},
		End:         10,
	},
	"linear": {
		Description: "C0 << Km: both laws nearly coincide",
		Params:      models.Params{Km: 10, Vmax: 50, C0: 1},
		End:         2,
	},
	"half-saturated": {
		Description: "C0 = Km: rate starts at Vmax/2",
		Params:      models.Params{Km: 10, Vmax: 50, C0: 10},
		End:         4,
	},
	"saturated": {
		Description: "C0 >> Km: zero-order elimination for most of the run",
		Params:      models.Params{Km: 10, Vmax: 50, C0: 500},
		End:         20,
	},
}

type Preset struct {
	Description string
	Params      models.Params
	End         float64
}

// GetPreset returns the default config with the preset applied, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = p.Params
	cfg.Grid.End = p.End
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
