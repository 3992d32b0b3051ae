package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/sim"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		Demo:       "drop",
		Frames:     2,
		StepsTaken: 4,
		Metrics:    map[string]float64{"energy": 12.5},
		Snapshots: []sim.Snapshot{
			{Time: 0, Energy: 10, Bodies: []sim.BodyState{
				{Name: "ground"},
				{Name: "ball", Position: mgl64.Vec3{0, 5, 0}},
			}},
			{Time: 0.5, Energy: 9.5, Bodies: []sim.BodyState{
				{Name: "ground"},
				{Name: "ball", Position: mgl64.Vec3{0, 3.75, 0}, Velocity: mgl64.Vec3{0, -4.9, 0}},
			}},
			{Time: 1, Energy: 9, Bodies: []sim.BodyState{
				{Name: "ground"},
			}},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := s.Save(RunMetadata{Regime: "soft", Seed: 7, FrameDt: 0.5, Duration: 1}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if id != "drop_1700000000000" {
		t.Errorf("id = %q", id)
	}

	meta, err := s.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Demo != "drop" || meta.Regime != "soft" || meta.Seed != 7 || meta.Steps != 4 {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Metrics["energy"] != 12.5 {
		t.Errorf("metrics = %v", meta.Metrics)
	}

	rec, err := s.LoadStates(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rec.Rows))
	}
	y, err := rec.Column("ball.y")
	if err != nil {
		t.Fatal(err)
	}
	if y[0] != 5 || y[1] != 3.75 || !math.IsNaN(y[2]) {
		t.Errorf("ball.y = %v", y)
	}
	if times := rec.Times(); times[2] != 1 {
		t.Errorf("times = %v", times)
	}

	runs, err := s.List()
	if err != nil || len(runs) != 1 || runs[0].ID != id {
		t.Errorf("List = %v, %v", runs, err)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/missing").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List = %v, %v", runs, err)
	}
}

func TestColumnMissing(t *testing.T) {
	rec, err := ReadCSV(strings.NewReader("time,energy\n0,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Column("ball.x"); !errors.Is(err, ErrNoColumn) {
		t.Errorf("err = %v, want ErrNoColumn", err)
	}
}

func TestReadCSVRejectsGarbage(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("time\nabc\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{ID: "x"}, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"energies"`) {
		t.Errorf("missing energies: %s", buf.String())
	}
}

func TestExportRunNullsMissingSamples(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	id, err := s.Save(RunMetadata{Regime: "stiff"}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportRun(&buf, id); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Meta    RunMetadata           `json:"meta"`
		Columns map[string][]*float64 `json:"columns"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Meta.ID != id {
		t.Errorf("meta id = %q", doc.Meta.ID)
	}
	ys := doc.Columns["ball.y"]
	if len(ys) != 3 || ys[0] == nil || *ys[0] != 5 || ys[2] != nil {
		t.Errorf("ball.y = %v", ys)
	}

	if err := s.ExportRun(&buf, "missing"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestSaveSameMillisecond(t *testing.T) {
	s := New(t.TempDir())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	a, err := s.Save(RunMetadata{}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(RunMetadata{}, sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b || b != a+"-1" {
		t.Errorf("ids = %q, %q", a, b)
	}
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("runs = %d, want 2", len(runs))
	}
}
