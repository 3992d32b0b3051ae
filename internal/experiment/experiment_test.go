package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/physlab/internal/config"
)

func TestRunBuildsAndRuns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Demo = "drop"
	cfg.Regime = "soft"
	cfg.Duration = 0.5

	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Demo != "drop" || res.Frames != 30 {
		t.Errorf("result demo=%s frames=%d", res.Demo, res.Frames)
	}

	meta := e.Metadata()
	if meta.Regime != "soft" || meta.FixedTimestep != 1.0/120 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Demo = "nope"
	if _, err := New(cfg); err == nil {
		t.Error("expected validation error")
	}
}

func TestPresetWorldOverrides(t *testing.T) {
	cfg := config.GetPreset("drop", "moon")
	if cfg == nil {
		t.Fatal("missing drop/moon preset")
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s, err := e.Setup()
	if err != nil {
		t.Fatal(err)
	}
	if g := s.World().Gravity().Y(); g > -1.5 || g < -1.7 {
		t.Errorf("moon gravity = %v", g)
	}
}
