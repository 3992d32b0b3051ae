package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

func oscillate(integ dynamo.Integrator, steps int, dt float64) dynamo.Motion {
	m := dynamo.Motion{
		Position:    mgl64.Vec3{1, 0, 0},
		Orientation: mgl64.QuatIdent(),
		InvMass:     1,
		InvInertia:  mgl64.Ident3(),
	}
	for i := 0; i < steps; i++ {
		m.Force = m.Position.Mul(-1)
		integ.Integrate(&m, dt)
	}
	return m
}

func TestSpringAccuracy(t *testing.T) {
	tests := []struct {
		name string
		tol  float64
	}{
		{"semi-implicit-euler", 1e-2},
		{"verlet", 1e-2},
	}

	dt := 0.001
	steps := 1000

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integ, err := New(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			m := oscillate(integ, steps, dt)
			expected := math.Cos(float64(steps) * dt)
			if math.Abs(m.Position[0]-expected) > tt.tol {
				t.Errorf("position error too large: got %.6f, expected %.6f", m.Position[0], expected)
			}
		})
	}
}

func TestExplicitEulerGainsEnergy(t *testing.T) {
	m := oscillate(NewExplicitEuler(), 5000, 0.01)
	energy := 0.5*m.Velocity.Dot(m.Velocity) + 0.5*m.Position.Dot(m.Position)
	if energy <= 0.5 {
		t.Errorf("expected explicit euler to drift upward, got energy %.4f", energy)
	}
}

func TestStaticMotionUnchanged(t *testing.T) {
	for _, name := range List() {
		integ, _ := New(name)
		m := dynamo.Motion{
			Position:    mgl64.Vec3{1, 2, 3},
			Orientation: mgl64.QuatIdent(),
			Force:       mgl64.Vec3{0, -100, 0},
		}
		integ.Integrate(&m, 0.1)
		if m.Position != (mgl64.Vec3{1, 2, 3}) {
			t.Errorf("%s: zero inverse mass moved to %v", name, m.Position)
		}
	}
}

func TestOrientationStaysNormalized(t *testing.T) {
	integ := NewSemiImplicitEuler()
	m := dynamo.Motion{
		Orientation:     mgl64.QuatIdent(),
		AngularVelocity: mgl64.Vec3{0, 3, 1},
		InvMass:         1,
		InvInertia:      mgl64.Ident3(),
	}
	for i := 0; i < 500; i++ {
		integ.Integrate(&m, 1.0/60)
	}
	if math.Abs(m.Orientation.Len()-1) > 1e-9 {
		t.Errorf("expected unit quaternion, got length %f", m.Orientation.Len())
	}
}

func TestUnknownIntegrator(t *testing.T) {
	_, err := New("rk9")
	if !errors.Is(err, dynamo.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}
