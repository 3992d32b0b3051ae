package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Demo != "cradle" {
		t.Errorf("expected demo cradle, got %s", cfg.Demo)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"unknown demo", func(c *Config) { c.Demo = "pinball" }},
		{"unknown regime", func(c *Config) { c.Regime = "rubber" }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"negative frame", func(c *Config) { c.FrameDt = -1 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"negative throw", func(c *Config) { c.ThrowScale = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physlab.yaml")
	data := []byte("demo: sandbox\nworld:\n  allow_sleep: false\n  solver_tolerance: 0\n  gravity: [0, -1.62, 0]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Demo != "sandbox" || cfg.FPS != DefaultFPS || cfg.Stream.Addr != DefaultAddr {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.World.AllowSleep == nil || *cfg.World.AllowSleep {
		t.Error("allow_sleep not read")
	}
	if cfg.World.SolverTolerance == nil || *cfg.World.SolverTolerance != 0 {
		t.Error("solver_tolerance not read")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physlab.yaml")
	cfg := GetPreset("cradle", "coarse")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.World.FixedTimestep != cfg.World.FixedTimestep || got.World.SolverIterations != 10 {
		t.Errorf("world overrides lost: %+v", got.World)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestWorldConfigApply(t *testing.T) {
	base := physics.DefaultConfig()
	base.AllowSleep = true

	cfg := base
	WorldConfig{}.Apply(&cfg)
	if cfg != base {
		t.Error("empty overrides changed the config")
	}

	off := false
	WorldConfig{Gravity: vec(0, -1, 0), SolverIterations: 3, AllowSleep: &off}.Apply(&cfg)
	if cfg.Gravity != (mgl64.Vec3{0, -1, 0}) || cfg.SolverIterations != 3 || cfg.AllowSleep {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.FixedTimestep != base.FixedTimestep {
		t.Error("unset timestep changed")
	}
}

func TestDemoOptions(t *testing.T) {
	cfg := GetPreset("cradle", "soft")
	opts, err := cfg.DemoOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Regime.Name != "soft" {
		t.Errorf("regime %q, want soft", opts.Regime.Name)
	}
	pc := physics.DefaultConfig()
	opts.Tune(&pc)
	if pc != physics.DefaultConfig() {
		t.Error("preset without overrides changed the world config")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for demo, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Demo != demo {
				t.Errorf("%s/%s builds demo %s", demo, name, cfg.Demo)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", demo, name, err)
			}
		}
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("sandbox", "throw")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.ThrowScale != 1 {
		t.Errorf("expected throw scale 1, got %f", cfg.ThrowScale)
	}
	cfg.ThrowScale = 5
	if GetPreset("sandbox", "throw").ThrowScale != 1 {
		t.Error("GetPreset returned a shared config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("cradle", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "stiff") != nil {
		t.Error("expected nil for nonexistent demo")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("cradle")
	if len(presets) != 4 || presets[0] != "awake" {
		t.Errorf("unexpected cradle presets %v", presets)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent demo")
	}
}
