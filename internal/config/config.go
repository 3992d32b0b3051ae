package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	DefaultDemo     = "cradle"
	DefaultRegime   = "stiff"
	DefaultDuration = 10.0
	DefaultFrameDt  = 1.0 / 60
	DefaultFPS      = 60
	DefaultLogLevel = "info"
	DefaultAddr     = "localhost:8080"
)

type Config struct {
	Demo       string       `yaml:"demo"`
	Regime     string       `yaml:"regime"`
	Seed       int64        `yaml:"seed"`
	Duration   float64      `yaml:"duration"`
	FrameDt    float64      `yaml:"frame_dt"`
	FPS        int          `yaml:"fps"`
	ThrowScale float64      `yaml:"throw_scale"`
	LogLevel   string       `yaml:"log_level"`
	Audio      bool         `yaml:"audio"`
	Stream     StreamConfig `yaml:"stream"`
	World      WorldConfig  `yaml:"world"`
}

type StreamConfig struct {
	Addr string `yaml:"addr"`
}

// WorldConfig overrides a demo's world settings. Unset fields keep the
// demo's own values.
type WorldConfig struct {
	Gravity          *[3]float64 `yaml:"gravity,omitempty"`
	FixedTimestep    float64     `yaml:"fixed_timestep,omitempty"`
	MaxSubSteps      int         `yaml:"max_sub_steps,omitempty"`
	SolverIterations int         `yaml:"solver_iterations,omitempty"`
	SolverTolerance  *float64    `yaml:"solver_tolerance,omitempty"`
	AllowSleep       *bool       `yaml:"allow_sleep,omitempty"`
	Integrator       string      `yaml:"integrator,omitempty"`
	MaxFrameDelta    float64     `yaml:"max_frame_delta,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Demo:     DefaultDemo,
		Regime:   DefaultRegime,
		Duration: DefaultDuration,
		FrameDt:  DefaultFrameDt,
		FPS:      DefaultFPS,
		LogLevel: DefaultLogLevel,
		Stream:   StreamConfig{Addr: DefaultAddr},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !slices.Contains(demo.List(), c.Demo) {
		return dynamo.Invalid("demo", c.Demo, "unknown demo")
	}
	if _, err := demo.RegimeByName(c.Regime); err != nil {
		return err
	}
	if !(c.Duration > 0) {
		return dynamo.Invalid("duration", c.Duration, "must be positive")
	}
	if !(c.FrameDt > 0) {
		return dynamo.Invalid("frame_dt", c.FrameDt, "must be positive")
	}
	if c.FPS <= 0 {
		return dynamo.Invalid("fps", c.FPS, "must be positive")
	}
	if c.ThrowScale < 0 {
		return dynamo.Invalid("throw_scale", c.ThrowScale, "must be >= 0")
	}
	return nil
}

// Apply writes the set fields onto cfg.
func (w WorldConfig) Apply(cfg *physics.Config) {
	if w.Gravity != nil {
		cfg.Gravity = mgl64.Vec3(*w.Gravity)
	}
	if w.FixedTimestep != 0 {
		cfg.FixedTimestep = w.FixedTimestep
	}
	if w.MaxSubSteps != 0 {
		cfg.MaxSubSteps = w.MaxSubSteps
	}
	if w.SolverIterations != 0 {
		cfg.SolverIterations = w.SolverIterations
	}
	if w.SolverTolerance != nil {
		cfg.SolverTolerance = *w.SolverTolerance
	}
	if w.AllowSleep != nil {
		cfg.AllowSleep = *w.AllowSleep
	}
	if w.Integrator != "" {
		cfg.Integrator = w.Integrator
	}
	if w.MaxFrameDelta != 0 {
		cfg.MaxFrameDelta = w.MaxFrameDelta
	}
}

// DemoOptions converts the file settings into demo build options.
func (c *Config) DemoOptions() (demo.Options, error) {
	reg, err := demo.RegimeByName(c.Regime)
	if err != nil {
		return demo.Options{}, err
	}
	world := c.World
	return demo.Options{
		Regime:     reg,
		Seed:       c.Seed,
		ThrowScale: c.ThrowScale,
		Tune:       world.Apply,
	}, nil
}
