// Package experiment turns a configuration into a built demo, runs it and
// describes the run for storage.
package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
)

type Experiment struct {
	cfg    config.Config
	logger *log.Logger
	sim    *sim.Simulator
	opts   []sim.Option
	script []sim.ScriptedEvent
}

type Option func(*Experiment)

func WithLogger(l *log.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithSimOptions passes options to the simulator built by Setup.
func WithSimOptions(opts ...sim.Option) Option {
	return func(e *Experiment) { e.opts = append(e.opts, opts...) }
}

// WithScript injects host events at fixed simulated times during Run.
func WithScript(events ...sim.ScriptedEvent) Option {
	return func(e *Experiment) { e.script = append(e.script, events...) }
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{cfg: *cfg, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Experiment) Config() config.Config { return e.cfg }

// Setup builds the demo and its simulator. Calling it again rebuilds both.
func (e *Experiment) Setup() (*sim.Simulator, error) {
	dopts, err := e.cfg.DemoOptions()
	if err != nil {
		return nil, err
	}
	dopts.Logger = e.logger
	sc, err := demo.Build(e.cfg.Demo, dopts)
	if err != nil {
		return nil, err
	}
	opts := append([]sim.Option{sim.WithLogger(e.logger.WithPrefix("sim"))}, e.opts...)
	e.sim = sim.New(sc, opts...)
	e.logger.Info("experiment ready", "demo", e.cfg.Demo, "regime", e.cfg.Regime, "seed", e.cfg.Seed)
	return e.sim, nil
}

// Simulator returns the simulator built by Setup, or nil.
func (e *Experiment) Simulator() *sim.Simulator {
	return e.sim
}

// Run runs headless for the configured duration, building the scene first
// if Setup has not been called.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.sim == nil {
		if _, err := e.Setup(); err != nil {
			return nil, err
		}
	}
	res, err := e.sim.Run(ctx, sim.Config{
		Duration:    e.cfg.Duration,
		FrameDt:     e.cfg.FrameDt,
		RecordEvery: 1,
		Script:      e.script,
	})
	if err != nil {
		return res, fmt.Errorf("run %s: %w", e.cfg.Demo, err)
	}
	return res, nil
}

// Metadata describes the run for storage.
func (e *Experiment) Metadata() storage.RunMetadata {
	meta := storage.RunMetadata{
		Demo:     e.cfg.Demo,
		Regime:   e.cfg.Regime,
		Seed:     e.cfg.Seed,
		FrameDt:  e.cfg.FrameDt,
		Duration: e.cfg.Duration,
	}
	if e.sim != nil {
		wc := e.sim.World().Config()
		meta.FixedTimestep = wc.FixedTimestep
		meta.Integrator = wc.Integrator
	}
	if meta.Integrator == "" {
		meta.Integrator = physics.DefaultConfig().Integrator
	}
	return meta
}
