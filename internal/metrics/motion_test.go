package metrics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/physics"
)

func TestPeakHeightAndImpacts(t *testing.T) {
	w := newWorld(t, -9.82)
	if _, err := w.AddBody(physics.BodyOptions{Shape: physics.Plane()}); err != nil {
		t.Fatal(err)
	}
	ball := addBall(t, w, mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 3, 0})
	peak := NewPeakHeight("ball", ball.ID(), 0)
	impacts := NewImpacts(0.5)
	Attach(w, peak, impacts)

	for i := 0; i < 120; i++ {
		w.Advance(1.0 / 60)
	}
	// rises 3^2/(2*9.82) above the start
	if got := peak.Value(); got < 2.4 || got > 2.5 {
		t.Errorf("peak = %v, want about 2.46", got)
	}
	if impacts.Value() < 1 {
		t.Fatal("no impact recorded")
	}
	if impacts.MaxSpeed() < 5 {
		t.Errorf("impact speed %v, want about 7", impacts.MaxSpeed())
	}
	if peak.Name() != "peak_ball" {
		t.Errorf("name = %q", peak.Name())
	}
}

func TestMaxStretchIgnoresDisabled(t *testing.T) {
	w := newWorld(t, -9.82)
	anchor, err := w.AddBody(physics.BodyOptions{Position: mgl64.Vec3{0, 5, 0}})
	if err != nil {
		t.Fatal(err)
	}
	ball := addBall(t, w, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{})
	h, err := w.AddConstraint(physics.Distance(ball.ID(), anchor.ID(), 3))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetConstraintEnabled(h, false); err != nil {
		t.Fatal(err)
	}
	m := NewMaxStretch()
	m.Observe(w, 0)
	if m.Value() != 0 {
		t.Errorf("disabled constraint counted: %v", m.Value())
	}
	if err := w.SetConstraintEnabled(h, true); err != nil {
		t.Fatal(err)
	}
	m.Observe(w, 0)
	if got := m.Value(); got < 0.3 || got > 0.34 {
		t.Errorf("stretch = %v, want 1/3", got)
	}
}
