package config

import "sort"

func preset(name string, edit func(c *Config)) *Config {
	c := DefaultConfig()
	c.Demo = name
	if edit != nil {
		edit(c)
	}
	return c
}

func vec(x, y, z float64) *[3]float64 { return &[3]float64{x, y, z} }

func ptr[T any](v T) *T { return &v }

var Presets = map[string]map[string]*Config{
	"cradle": {
		"stiff": preset("cradle", nil),
		"soft":  preset("cradle", func(c *Config) { c.Regime = "soft" }),
		"awake": preset("cradle", func(c *Config) { c.World.AllowSleep = ptr(false) }),
		"coarse": preset("cradle", func(c *Config) {
			c.World.FixedTimestep = 1.0 / 60
			c.World.SolverIterations = 10
		}),
	},
	"drop": {
		"stiff": preset("drop", func(c *Config) { c.Duration = 20 }),
		"soft":  preset("drop", func(c *Config) { c.Duration = 20; c.Regime = "soft" }),
		"moon":  preset("drop", func(c *Config) { c.Duration = 30; c.World.Gravity = vec(0, -1.62, 0) }),
	},
	"vehicle": {
		"default": preset("vehicle", nil),
		"moon":    preset("vehicle", func(c *Config) { c.World.Gravity = vec(0, -1.62, 0) }),
	},
	"sandbox": {
		"default": preset("sandbox", nil),
		"throw":   preset("sandbox", func(c *Config) { c.ThrowScale = 1 }),
		"zero-g":  preset("sandbox", func(c *Config) { c.World.Gravity = vec(0, 0, 0) }),
		"verlet":  preset("sandbox", func(c *Config) { c.World.Integrator = "verlet" }),
	},
}

// GetPreset returns a copy of the preset, or nil.
func GetPreset(demo, name string) *Config {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	cfg, ok := demoPresets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(demo string) []string {
	demoPresets, ok := Presets[demo]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(demoPresets))
	for name := range demoPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
