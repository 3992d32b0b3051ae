// Package automation runs scripted sessions: YAML scenarios, parameter
// sweeps and seeded Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/experiment"
	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/sim"
	"github.com/san-kum/physlab/internal/storage"
)

// Scenario is a sequence of scripted runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Unset fields fall back to the preset, then to
// the defaults.
type ScenarioStep struct {
	Demo     string      `yaml:"demo"`
	Preset   string      `yaml:"preset"`
	Regime   string      `yaml:"regime"`
	Seed     int64       `yaml:"seed"`
	Duration float64     `yaml:"duration"`
	FrameDt  float64     `yaml:"frame_dt"`
	Events   []EventSpec `yaml:"events"`
	SaveAs   string      `yaml:"save_as"`
}

// EventSpec is a host event at a simulated time. Set Key for a key
// transition or Pointer (down, move, up) with X, Y in device coordinates.
type EventSpec struct {
	At      float64 `yaml:"at"`
	Key     string  `yaml:"key,omitempty"`
	Up      bool    `yaml:"up,omitempty"`
	Pointer string  `yaml:"pointer,omitempty"`
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
}

func (e EventSpec) Scripted() (sim.ScriptedEvent, error) {
	if e.At < 0 {
		return sim.ScriptedEvent{}, dynamo.Invalid("at", e.At, "must be >= 0")
	}
	switch {
	case e.Key != "" && e.Pointer != "":
		return sim.ScriptedEvent{}, fmt.Errorf("event at %.3fs sets both key and pointer", e.At)
	case e.Key != "":
		return sim.ScriptedEvent{At: e.At, Event: input.Key(e.Key, !e.Up)}, nil
	}
	var a input.PointerAction
	switch e.Pointer {
	case "down":
		a = input.PointerDown
	case "move":
		a = input.PointerMove
	case "up":
		a = input.PointerUp
	default:
		return sim.ScriptedEvent{}, fmt.Errorf("event at %.3fs: unknown pointer action %q", e.At, e.Pointer)
	}
	return sim.ScriptedEvent{At: e.At, Event: input.Pointer(a, e.X, e.Y)}, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the step into a validated run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Demo, s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.Demo, s.Preset)
		}
	}
	if s.Demo != "" {
		cfg.Demo = s.Demo
	}
	if s.Regime != "" {
		cfg.Regime = s.Regime
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.Duration != 0 {
		cfg.Duration = s.Duration
	}
	if s.FrameDt != 0 {
		cfg.FrameDt = s.FrameDt
	}
	return cfg, cfg.Validate()
}

type Runner struct {
	store  *storage.Store
	logger *log.Logger
}

type Option func(*Runner)

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithStore saves every step that names SaveAs.
func WithStore(st *storage.Store) Option {
	return func(r *Runner) { r.store = st }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StepResult is a finished scenario step. RunID is set when it was saved.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

// RunScenario executes every step in order and stops at the first failure,
// returning the steps that completed.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		r.logger.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "demo", step.Demo)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		script := make([]sim.ScriptedEvent, 0, len(step.Events))
		for _, ev := range step.Events {
			se, err := ev.Scripted()
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			script = append(script, se)
		}

		exp, err := experiment.New(cfg, experiment.WithLogger(r.logger), experiment.WithScript(script...))
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && r.store != nil {
			meta := exp.Metadata()
			meta.Tag = step.SaveAs
			if sr.RunID, err = r.store.Save(meta, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// SetParam writes a named world or interaction parameter onto cfg.
// Supported: gravity (vertical component), fixed_timestep, max_sub_steps,
// solver_iterations, solver_tolerance and throw_scale.
func SetParam(cfg *config.Config, name string, v float64) error {
	w := &cfg.World
	switch name {
	case "gravity":
		w.Gravity = &[3]float64{0, v, 0}
	case "fixed_timestep":
		w.FixedTimestep = v
	case "max_sub_steps":
		w.MaxSubSteps = int(math.Round(v))
	case "solver_iterations":
		w.SolverIterations = int(math.Round(v))
	case "solver_tolerance":
		w.SolverTolerance = &v
	case "throw_scale":
		cfg.ThrowScale = v
	default:
		return dynamo.Invalid("param", name, "unknown parameter")
	}
	return nil
}

// ParameterSweep runs a demo once per evenly spaced parameter value.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Warnings   int
	Steps      int
}

// RunSweep runs every point of the sweep concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, dynamo.Invalid("num_steps", sweep.NumSteps, "must be at least 2")
	}
	values := make([]float64, sweep.NumSteps)
	jobs := make([]sim.Job, sweep.NumSteps)
	step := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := range jobs {
		values[i] = sweep.ParamMin + float64(i)*step
		cfg := *sweep.Base
		if err := SetParam(&cfg, sweep.ParamName, values[i]); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		job, err := jobFor(&cfg)
		if err != nil {
			return nil, err
		}
		jobs[i] = job
	}

	results, err := sim.RunAll(ctx, jobs)
	if err != nil {
		return nil, err
	}
	out := make([]SweepResult, len(results))
	for i, r := range results {
		out[i] = SweepResult{
			ParamValue: values[i],
			Metrics:    r.Metrics,
			Warnings:   r.Diagnostics.Warnings,
			Steps:      r.StepsTaken,
		}
	}
	return out, nil
}

func jobFor(cfg *config.Config) (sim.Job, error) {
	opts, err := cfg.DemoOptions()
	if err != nil {
		return sim.Job{}, err
	}
	return sim.Job{
		Demo:    cfg.Demo,
		Options: opts,
		Config:  sim.Config{Duration: cfg.Duration, FrameDt: cfg.FrameDt, RecordEvery: 1},
	}, nil
}

// MonteCarloConfig repeats a scripted run with consecutive seeds. The seed
// drives every random choice a scene makes, such as sandbox spawns.
type MonteCarloConfig struct {
	Base      *config.Config
	Events    []EventSpec
	NumTrials int
	Seed      int64
	// MaxPenetration above which a trial counts as unstable.
	MaxPenetration float64
}

type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	Bodies      int
	FinalEnergy float64
	Stable      bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, dynamo.Invalid("num_trials", cfg.NumTrials, "must be positive")
	}
	script := make([]sim.ScriptedEvent, 0, len(cfg.Events))
	for _, ev := range cfg.Events {
		se, err := ev.Scripted()
		if err != nil {
			return nil, err
		}
		script = append(script, se)
	}
	limit := cfg.MaxPenetration
	if limit <= 0 {
		limit = 0.5
	}

	jobs := make([]sim.Job, cfg.NumTrials)
	for i := range jobs {
		c := *cfg.Base
		c.Seed = cfg.Seed + int64(i)
		job, err := jobFor(&c)
		if err != nil {
			return nil, err
		}
		job.Config.Script = script
		jobs[i] = job
	}

	results, err := sim.RunAll(ctx, jobs)
	if err != nil {
		return nil, err
	}
	out := make([]MonteCarloResult, len(results))
	for i, r := range results {
		last := r.Snapshots[len(r.Snapshots)-1]
		d := r.Diagnostics
		out[i] = MonteCarloResult{
			TrialID:     i,
			Seed:        cfg.Seed + int64(i),
			Bodies:      len(last.Bodies),
			FinalEnergy: last.Energy,
			Stable:      d.NonFinite == 0 && d.MaxPenetration < limit && !math.IsNaN(last.Energy),
		}
	}
	return out, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
