package config

import "sort"

// Preset is a named starting configuration
type Preset struct {
	Name        string
	Description string
	apply       func(*SimulationConfig)
}

var presets = map[string]Preset{
	"classic": {
		Name:        "Classic",
		Description: "100 asteroids in a 10 km disk",
		apply:       func(c *SimulationConfig) {},
	},
	"dense": {
		Name:        "Dense Belt",
		Description: "300 small asteroids packed into a narrow ring",
		apply: func(c *SimulationConfig) {
			c.FieldConfig.AsteroidCount = 300
			c.FieldConfig.MinDistanceFraction = 0.4
			c.FieldConfig.MaxDistanceFraction = 0.6
			c.FieldConfig.MinOuterRadius = 20
			c.FieldConfig.MaxOuterRadius = 150
		},
	},
	"sparse": {
		Name:        "Sparse Field",
		Description: "30 large asteroids spread across the disk",
		apply: func(c *SimulationConfig) {
			c.FieldConfig.AsteroidCount = 30
			c.FieldConfig.MinOuterRadius = 200
			c.FieldConfig.MaxOuterRadius = 600
		},
	},
	"sandbox": {
		Name:        "Sandbox",
		Description: "No asteroids, only the black hole",
		apply: func(c *SimulationConfig) {
			c.FieldConfig.AsteroidCount = 0
		},
	},
}

// GetPreset returns a fresh config for the named preset, or nil if unknown
func GetPreset(key string) *SimulationConfig {
	p, ok := presets[key]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

// ListPresets returns the available presets keyed by name
func ListPresets() map[string]Preset {
	out := make(map[string]Preset, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// PresetNames returns the preset keys in sorted order
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
