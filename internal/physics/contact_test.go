package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// contactRegimes are the two parameter sets every contact test runs under.
var contactRegimes = []struct {
	name       string
	stiffness  float64
	relaxation float64
}{
	{"stiff", 1e10, 3},
	{"soft", 1e7, 3},
}

func TestBallDropOnPlane(t *testing.T) {
	const (
		radius = 0.5
		dropY  = 5.0
		h      = 1.0 / 120
	)

	for _, regime := range contactRegimes {
		t.Run(regime.name, func(t *testing.T) {
			w := newTestWorld(t, func(c *Config) { c.FixedTimestep = h })
			if err := w.AddContactMaterial(ContactMaterial{
				A: "ground", B: "ball",
				Friction:    0.3,
				Restitution: 0.8,
				Stiffness:   regime.stiffness,
				Relaxation:  regime.relaxation,
			}); err != nil {
				t.Fatal(err)
			}
			mustBody(t, w, BodyOptions{Shape: Plane(), Material: NewMaterial("ground")})
			ball := mustBody(t, w, BodyOptions{
				Mass:          1,
				Shape:         Sphere(radius),
				Material:      NewMaterial("ball"),
				Position:      mgl64.Vec3{0, dropY, 0},
				LinearDamping: DefaultLinearDamping,
			})

			landed, rising := false, false
			peak := 0.0
			for i := 0; i < int(30/h); i++ {
				w.StepFixed(h)
				y, vy := ball.Position()[1], ball.Velocity()[1]
				if !landed && y < radius+0.1 {
					landed = true
				}
				if landed && vy > 0 && !rising && i < int(3/h) {
					rising = true
				}
				if rising && i < int(3/h) {
					peak = math.Max(peak, y)
				}
			}

			if !landed || !rising {
				t.Fatalf("expected a bounce, landed=%v rising=%v", landed, rising)
			}
			if peak >= dropY {
				t.Errorf("rebound peak %.3f should stay below drop height %.1f", peak, dropY)
			}
			if peak < radius+1 {
				t.Errorf("expected a visible rebound, got peak %.3f", peak)
			}
			if y := ball.Position()[1]; math.Abs(y-radius) > 0.01 {
				t.Errorf("expected ball to rest at y=%.2f, got %.4f", radius, y)
			}
		})
	}
}

func TestDistanceConstraintConverges(t *testing.T) {
	for _, regime := range contactRegimes {
		t.Run(regime.name, func(t *testing.T) {
			w := newTestWorld(t, func(c *Config) { c.Gravity = mgl64.Vec3{} })
			pivot := mustBody(t, w, BodyOptions{})
			ball := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.2), Position: mgl64.Vec3{2, 0, 0}})

			spec := Distance(ball.ID(), pivot.ID(), 1)
			spec.Stiffness = regime.stiffness
			h, err := w.AddConstraint(spec)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 120; i++ {
				w.Advance(1.0 / 60)
			}

			c, _ := w.Constraint(h)
			if e := w.ConstraintError(c); e > 1e-3 {
				t.Errorf("expected length to converge to 1, relative error %.5f", e)
			}
		})
	}
}

func TestBoxRestsOnPlane(t *testing.T) {
	w := newTestWorld(t, nil)
	mustBody(t, w, BodyOptions{Shape: Plane()})
	box := mustBody(t, w, BodyOptions{
		Mass:           2,
		Shape:          Box(mgl64.Vec3{0.5, 0.5, 0.5}),
		Position:       mgl64.Vec3{0, 2, 0},
		LinearDamping:  DefaultLinearDamping,
		AngularDamping: DefaultAngularDamping,
	})

	for i := 0; i < 300; i++ {
		w.Advance(1.0 / 60)
	}

	if y := box.Position()[1]; math.Abs(y-0.5) > 0.05 {
		t.Errorf("expected box centre near 0.5, got %.4f", y)
	}
	up := box.VectorToWorld(mgl64.Vec3{0, 1, 0})
	if up[1] < 0.99 {
		t.Errorf("expected box to stay upright, up=%v", up)
	}
}

func TestSphereSphereContactNormal(t *testing.T) {
	w := newTestWorld(t, nil)
	a := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5)})
	b := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5), Position: mgl64.Vec3{0.9, 0, 0}})

	cs := collide(a, b, nil)
	if len(cs) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(cs))
	}
	if !cs[0].normal.ApproxEqual(mgl64.Vec3{1, 0, 0}) {
		t.Errorf("expected normal +x, got %v", cs[0].normal)
	}
	if math.Abs(cs[0].depth-0.1) > 1e-12 {
		t.Errorf("expected depth 0.1, got %f", cs[0].depth)
	}

	swapped := collide(b, a, nil)
	if swapped[0].bi != b || !swapped[0].normal.ApproxEqual(mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("expected contact oriented from the first body, got %+v", swapped[0].normal)
	}
}

func TestCollidePairsKeepOrder(t *testing.T) {
	w := newTestWorld(t, nil)
	plane := mustBody(t, w, BodyOptions{Shape: Plane()})
	box := mustBody(t, w, BodyOptions{Mass: 1, Shape: Box(mgl64.Vec3{0.5, 0.5, 0.5}), Position: mgl64.Vec3{0, 0.4, 0}})
	ball := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5), Position: mgl64.Vec3{0, 1.3, 0}})

	tests := []struct {
		name    string
		a, b    *Body
		contact bool
	}{
		{"plane-box", plane, box, true},
		{"box-plane", box, plane, true},
		{"ball-box", ball, box, true},
		{"plane-ball", plane, ball, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := collide(tt.a, tt.b, nil)
			if (len(cs) > 0) != tt.contact {
				t.Fatalf("expected contact=%v, got %d contacts", tt.contact, len(cs))
			}
			for _, c := range cs {
				if c.bi != tt.a || c.bj != tt.b {
					t.Errorf("contact bodies out of order")
				}
				toB := tt.b.Position().Sub(tt.a.Position())
				if tt.a != plane && c.normal.Dot(toB) <= 0 {
					t.Errorf("normal %v does not point from a to b", c.normal)
				}
			}
		})
	}
}

type impactRecorder struct {
	steps   int
	impacts []Impact
}

func (r *impactRecorder) OnStep(step int, t float64) { r.steps = step }
func (r *impactRecorder) OnImpact(i Impact)          { r.impacts = append(r.impacts, i) }

func TestImpactObserver(t *testing.T) {
	w := newTestWorld(t, nil)
	mustBody(t, w, BodyOptions{Shape: Plane()})
	mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5), Position: mgl64.Vec3{0, 3, 0}})
	rec := &impactRecorder{}
	w.AddObserver(rec)

	for i := 0; i < 120; i++ {
		w.Advance(1.0 / 60)
	}
	if rec.steps != 120 {
		t.Errorf("expected 120 observed steps, got %d", rec.steps)
	}
	if len(rec.impacts) == 0 {
		t.Fatal("expected at least one impact")
	}
	if rec.impacts[0].Speed < 5 {
		t.Errorf("expected first impact near 7 m/s, got %.3f", rec.impacts[0].Speed)
	}
}

func TestPenetrationWarningIsNotFatal(t *testing.T) {
	w := newTestWorld(t, func(c *Config) { c.PenetrationTolerance = 0.01 })
	mustBody(t, w, BodyOptions{Shape: Plane()})
	ball := mustBody(t, w, BodyOptions{Mass: 1, Shape: Sphere(0.5), Position: mgl64.Vec3{0, 0.2, 0}})

	for i := 0; i < 10; i++ {
		w.Advance(1.0 / 60)
	}
	d := w.Diagnostics()
	if d.Penetrations == 0 || len(d.Recent) == 0 {
		t.Errorf("expected penetration warnings, got %+v", d)
	}
	if w.StepCount() != 10 {
		t.Errorf("expected stepping to continue, got %d steps", w.StepCount())
	}
	if ball.Position()[1] <= 0.2 {
		t.Errorf("expected ball to be pushed out, got y=%f", ball.Position()[1])
	}
}
