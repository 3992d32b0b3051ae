package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/storage"
)

const dropScenario = `
name: bounce
description: drop twice, once on the moon
steps:
  - demo: drop
    duration: 0.5
    save_as: earth
  - demo: drop
    preset: moon
    duration: 0.5
    save_as: moon
  - demo: cradle
    duration: 0.25
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(dropScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "bounce" || len(sc.Steps) != 3 {
		t.Fatalf("scenario = %+v", sc)
	}
	if sc.Steps[1].Preset != "moon" || sc.Steps[0].SaveAs != "earth" {
		t.Errorf("steps = %+v", sc.Steps)
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for a scenario without steps")
	}
}

func TestEventSpecScripted(t *testing.T) {
	tests := []struct {
		name    string
		spec    EventSpec
		want    input.Event
		wantErr bool
	}{
		{"key down", EventSpec{At: 1, Key: "W"}, input.Key("w", true), false},
		{"key up", EventSpec{At: 1, Key: "space", Up: true}, input.Key("space", false), false},
		{"pointer", EventSpec{Pointer: "down", X: 0.5, Y: -0.5}, input.Pointer(input.PointerDown, 0.5, -0.5), false},
		{"both", EventSpec{Key: "w", Pointer: "down"}, input.Event{}, true},
		{"bad pointer", EventSpec{Pointer: "hover"}, input.Event{}, true},
		{"negative time", EventSpec{At: -1, Key: "w"}, input.Event{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se, err := tt.spec.Scripted()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if err == nil && se.Event != tt.want {
				t.Errorf("event = %+v, want %+v", se.Event, tt.want)
			}
		})
	}
}

func TestRunScenarioSavesTaggedSteps(t *testing.T) {
	sc, err := ParseScenario([]byte(dropScenario))
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(t.TempDir())
	results, err := NewRunner(WithStore(st)).RunScenario(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].RunID == "" || results[1].RunID == "" || results[2].RunID != "" {
		t.Errorf("run ids = %q %q %q", results[0].RunID, results[1].RunID, results[2].RunID)
	}

	meta, err := st.Load(results[1].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Tag != "moon" {
		t.Errorf("tag = %q", meta.Tag)
	}

	// the moon ball falls more slowly
	earth, _ := results[0].Result.Snapshots[len(results[0].Result.Snapshots)-1].Body("ball")
	moon, _ := results[1].Result.Snapshots[len(results[1].Result.Snapshots)-1].Body("ball")
	if moon.Position.Y() <= earth.Position.Y() {
		t.Errorf("moon y %v should stay above earth y %v", moon.Position.Y(), earth.Position.Y())
	}
}

func TestRunScenarioStopsAtBadStep(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{
		{Demo: "drop", Duration: 0.1},
		{Demo: "warp", Duration: 0.1},
	}}
	results, err := NewRunner().RunScenario(context.Background(), sc)
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if len(results) != 1 {
		t.Errorf("completed = %d, want 1", len(results))
	}
}

func TestSetParam(t *testing.T) {
	cfg := config.DefaultConfig()
	for name, v := range map[string]float64{
		"gravity":           -3,
		"fixed_timestep":    0.01,
		"max_sub_steps":     4,
		"solver_iterations": 20,
		"solver_tolerance":  1e-6,
		"throw_scale":       0.5,
	} {
		if err := SetParam(cfg, name, v); err != nil {
			t.Errorf("SetParam(%s): %v", name, err)
		}
	}
	w := cfg.World
	if w.Gravity[1] != -3 || w.FixedTimestep != 0.01 || w.MaxSubSteps != 4 || w.SolverIterations != 20 || *w.SolverTolerance != 1e-6 || cfg.ThrowScale != 0.5 {
		t.Errorf("config = %+v", cfg)
	}
	if err := SetParam(cfg, "viscosity", 1); !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("err = %v", err)
	}
}

func TestRunSweepGravity(t *testing.T) {
	base := config.DefaultConfig()
	base.Demo = "drop"
	base.Duration = 0.5
	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:      base,
		ParamName: "gravity",
		ParamMin:  -2,
		ParamMax:  -10,
		NumSteps:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 || results[1].ParamValue != -6 {
		t.Fatalf("results = %+v", results)
	}
	for _, r := range results {
		if _, ok := r.Metrics["energy"]; !ok {
			t.Errorf("missing energy metric at g=%v", r.ParamValue)
		}
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, ParamName: "gravity", NumSteps: 1}); err == nil {
		t.Error("expected error for a single-point sweep")
	}
}

func TestMonteCarloSandboxSpawns(t *testing.T) {
	base := config.DefaultConfig()
	base.Demo = "sandbox"
	base.Duration = 0.5
	results, err := RunMonteCarlo(context.Background(), &MonteCarloConfig{
		Base: base,
		Events: []EventSpec{
			{At: 0.1, Key: "c"}, {At: 0.15, Key: "c", Up: true},
			{At: 0.2, Key: "c"}, {At: 0.25, Key: "c", Up: true},
		},
		NumTrials: 3,
		Seed:      42,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("trials = %d", len(results))
	}
	for _, r := range results {
		if r.Bodies != 9 {
			t.Errorf("trial %d bodies = %d, want 9", r.TrialID, r.Bodies)
		}
	}
	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 3 || results[2].Seed != 44 {
		t.Errorf("stats = %d/%d seeds end at %d", stable, unstable, results[2].Seed)
	}
}
