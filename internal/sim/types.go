package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/physics"
)

// Config drives a headless run. Frames advance by FrameDt of virtual time.
type Config struct {
	Duration float64
	FrameDt  float64
	// RecordEvery is the number of frames between snapshots; 0 records
	// every frame.
	RecordEvery int
	Script      []ScriptedEvent
}

// ScriptedEvent is delivered on the first frame at or after At.
type ScriptedEvent struct {
	At    float64
	Event input.Event
}

type BodyState struct {
	ID          physics.BodyID
	Name        string
	Position    mgl64.Vec3
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
	Sleeping    bool
}

type Snapshot struct {
	Time   float64
	Frame  int
	Energy float64
	Bodies []BodyState
}

// Body finds a body by name.
func (s Snapshot) Body(name string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

type Result struct {
	Demo        string
	Snapshots   []Snapshot
	Metrics     map[string]float64
	Diagnostics physics.Diagnostics
	Frames      int
	StepsTaken  int
	EnergyDrift float64
}

func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}

func (r *Result) Energies() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Energy
	}
	return out
}

// Series extracts one value per snapshot for the named body. Snapshots in
// which the body does not exist yield NaN.
func (r *Result) Series(body string, f func(BodyState) float64) []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		b, ok := s.Body(body)
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = f(b)
	}
	return out
}

// Component selects a position or velocity component by name: x, y, z,
// vx, vy, vz or speed.
func Component(name string) (func(BodyState) float64, error) {
	switch name {
	case "x", "y", "z":
		i := int(name[0] - 'x')
		return func(b BodyState) float64 { return b.Position[i] }, nil
	case "vx", "vy", "vz":
		i := int(name[1] - 'x')
		return func(b BodyState) float64 { return b.Velocity[i] }, nil
	case "speed":
		return func(b BodyState) float64 { return b.Velocity.Len() }, nil
	default:
		return nil, fmt.Errorf("unknown component %q", name)
	}
}

// BodyNames lists the bodies of the first snapshot in order.
func (r *Result) BodyNames() []string {
	if len(r.Snapshots) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Snapshots[0].Bodies))
	for _, b := range r.Snapshots[0].Bodies {
		names = append(names, b.Name)
	}
	return names
}
