// Package config loads named vehicle parameter presets from YAML or JSON
// files, with environment-variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Preset is a named set of vehicle parameters as written in a preset file.
// Zero values mean "not set": they fall back to flags and defaults.
type Preset struct {
	WeightKg               float64 `json:"weight_kg"`
	CurbWeightKg           float64 `json:"curb_weight_kg"`
	DragAreaM2             float64 `json:"drag_area_m2"`
	DragCoefficient        float64 `json:"drag_coefficient"`
	FrontalAreaM2          float64 `json:"frontal_area_m2"`
	WidthM                 float64 `json:"width_m"`
	HeightM                float64 `json:"height_m"`
	RollingResistanceCoeff float64 `json:"rolling_resistance_coefficient"`
	DrivetrainEfficiency   float64 `json:"drivetrain_efficiency"`
	IdlePowerKW            float64 `json:"idle_power_kw"`
	TemperatureC           float64 `json:"temperature_c"`
}

// File maps preset names to vehicle parameters.
type File struct {
	Presets map[string]Preset `json:"presets"`
}

// Load reads a preset file. The format is chosen by extension (.yaml, .yml
// or .json). Values can be overridden through EV_-prefixed environment
// variables, with "__" as the key separator (e.g. EV_PRESETS__M3__WEIGHT_KG).
func Load(path string) (*File, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported preset format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("EV_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ev_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var f File
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return &f, nil
}

// Preset returns the preset with the given name.
func (f *File) Preset(name string) (Preset, error) {
	p, ok := f.Presets[name]
	if !ok {
		names := make([]string, 0, len(f.Presets))
		for n := range f.Presets {
			names = append(names, n)
		}
		return Preset{}, fmt.Errorf("preset %q not found (have: %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}
