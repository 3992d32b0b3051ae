package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func wheelRig(t *testing.T) (*World, *Body, ConstraintHandle) {
	t.Helper()
	w := newTestWorld(t, func(c *Config) { c.Gravity = mgl64.Vec3{} })
	chassis := mustBody(t, w, BodyOptions{Shape: Box(mgl64.Vec3{1, 0.25, 1})})
	wheel := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5), Position: mgl64.Vec3{3, 0, 0}})
	h, err := w.AddConstraint(Wheel(chassis.ID(), wheel.ID(), mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, 0, 1}))
	if err != nil {
		t.Fatal(err)
	}
	return w, wheel, h
}

func TestWheelDriveSpinsAboutAxis(t *testing.T) {
	w, wheel, h := wheelRig(t)
	c, _ := w.Constraint(h)
	c.SetDriveForce(10)

	for i := 0; i < 60; i++ {
		w.Advance(1.0 / 60)
	}

	spin := wheel.AngularVelocity()
	if spin[2] < 10 {
		t.Errorf("expected spin about +z, got %v", spin)
	}
	if math.Abs(spin[0]) > 1e-3*spin[2] || math.Abs(spin[1]) > 1e-3*spin[2] {
		t.Errorf("expected spin confined to the hinge axis, got %v", spin)
	}
	if e := w.ConstraintError(c); e > 1e-3 {
		t.Errorf("expected wheel to stay on its pivot, error %.5f", e)
	}
}

func TestWheelSteeringTurnsAxis(t *testing.T) {
	w, wheel, h := wheelRig(t)
	c, _ := w.Constraint(h)
	c.SetSteering(math.Pi / 8)

	for i := 0; i < 120; i++ {
		w.Advance(1.0 / 60)
	}

	want := mgl64.QuatRotate(math.Pi/8, mgl64.Vec3{0, 1, 0}).Rotate(mgl64.Vec3{0, 0, 1})
	got := wheel.VectorToWorld(mgl64.Vec3{0, 0, 1})
	if got.Dot(want) < 0.999 {
		t.Errorf("expected wheel axis %v, got %v", want, got)
	}
}

func TestSteeringIgnoredByOtherKinds(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustBody(t, w, BodyOptions{})
	b := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.3), Position: mgl64.Vec3{0, -1, 0}})
	h, _ := w.AddConstraint(Distance(b.ID(), a.ID(), 1))
	c, _ := w.Constraint(h)

	c.SetSteering(1)
	c.SetDriveForce(5)
	if c.Steering() != 0 || c.DriveForce() != 0 {
		t.Errorf("expected distance constraint to ignore wheel controls, got %f %f", c.Steering(), c.DriveForce())
	}
}
