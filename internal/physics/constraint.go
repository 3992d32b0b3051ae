package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

type ConstraintKind int

const (
	// ConstraintDistance keeps the centres of A and B at a fixed distance.
	ConstraintDistance ConstraintKind = iota
	// ConstraintPivot joins a point of A to a point of B, or to a world
	// anchor when B is zero.
	ConstraintPivot
	// ConstraintWheel is a steerable hinge between a chassis (A) and a
	// wheel (B) with a drive torque about the hinge axis.
	ConstraintWheel
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintDistance:
		return "distance"
	case ConstraintPivot:
		return "pivot"
	case ConstraintWheel:
		return "wheel"
	default:
		return "unknown"
	}
}

const (
	DefaultConstraintMaxForce   = 1e6
	DefaultConstraintStiffness  = 1e7
	DefaultConstraintRelaxation = 4
)

// ConstraintSpec describes a constraint before it is added to a world.
// Use the constructors below to get sensible solver parameters.
type ConstraintSpec struct {
	Kind ConstraintKind
	A, B BodyID

	PivotA mgl64.Vec3
	PivotB mgl64.Vec3
	Anchor mgl64.Vec3

	Distance float64

	// Axis is the hinge axis, the same vector in chassis and wheel frames.
	// Up is the steering axis in the chassis frame.
	Axis mgl64.Vec3
	Up   mgl64.Vec3

	MaxForce   float64
	Stiffness  float64
	Relaxation float64

	// CollideConnected keeps contacts between A and B while the constraint
	// is enabled.
	CollideConnected bool
}

func Distance(a, b BodyID, distance float64) ConstraintSpec {
	return ConstraintSpec{
		Kind:       ConstraintDistance,
		A:          a,
		B:          b,
		Distance:   distance,
		MaxForce:   DefaultConstraintMaxForce,
		Stiffness:  DefaultConstraintStiffness,
		Relaxation: DefaultConstraintRelaxation,

		CollideConnected: true,
	}
}

func PointToPoint(a BodyID, pivotA mgl64.Vec3, b BodyID, pivotB mgl64.Vec3) ConstraintSpec {
	return ConstraintSpec{
		Kind:       ConstraintPivot,
		A:          a,
		B:          b,
		PivotA:     pivotA,
		PivotB:     pivotB,
		MaxForce:   DefaultConstraintMaxForce,
		Stiffness:  DefaultConstraintStiffness,
		Relaxation: DefaultConstraintRelaxation,

		CollideConnected: true,
	}
}

// WorldPivot pins pivotA (local to a) to a fixed world point.
func WorldPivot(a BodyID, pivotA, anchor mgl64.Vec3) ConstraintSpec {
	s := PointToPoint(a, pivotA, 0, mgl64.Vec3{})
	s.Anchor = anchor
	return s
}

// Wheel hinges wheel to chassis at the chassis-local pivot. The pair does
// not collide.
func Wheel(chassis, wheel BodyID, pivot, axis mgl64.Vec3) ConstraintSpec {
	return ConstraintSpec{
		Kind:       ConstraintWheel,
		A:          chassis,
		B:          wheel,
		PivotA:     pivot,
		Axis:       axis,
		Up:         mgl64.Vec3{0, 1, 0},
		MaxForce:   DefaultConstraintMaxForce,
		Stiffness:  DefaultConstraintStiffness,
		Relaxation: DefaultConstraintRelaxation,
	}
}

func (s ConstraintSpec) validate() error {
	if s.A == 0 {
		return dynamo.Invalid("constraint body A", s.A, "required")
	}
	if s.A == s.B {
		return dynamo.Invalid("constraint bodies", s.A, "A and B must differ")
	}
	if !(s.MaxForce > 0) {
		return dynamo.Invalid("constraint max force", s.MaxForce, "must be positive")
	}
	if !(s.Stiffness > 0) || math.IsInf(s.Stiffness, 0) {
		return dynamo.Invalid("constraint stiffness", s.Stiffness, "must be positive and finite")
	}
	if !(s.Relaxation > 0) {
		return dynamo.Invalid("constraint relaxation", s.Relaxation, "must be positive")
	}
	switch s.Kind {
	case ConstraintDistance:
		if s.B == 0 {
			return dynamo.Invalid("constraint body B", s.B, "distance constraints need two bodies")
		}
		if !(s.Distance > 0) || math.IsInf(s.Distance, 0) {
			return dynamo.Invalid("constraint distance", s.Distance, "must be positive and finite")
		}
	case ConstraintPivot:
	case ConstraintWheel:
		if s.B == 0 {
			return dynamo.Invalid("constraint body B", s.B, "wheel constraints need a wheel body")
		}
		if s.Axis.Len() < 1e-9 {
			return dynamo.Invalid("wheel axis", s.Axis, "must be non-zero")
		}
		if s.Up.Len() < 1e-9 {
			return dynamo.Invalid("wheel up", s.Up, "must be non-zero")
		}
	default:
		return dynamo.Invalid("constraint kind", int(s.Kind), "unknown kind")
	}
	return nil
}

// ConstraintHandle is a stable reference into the constraint arena. Handles
// of removed constraints never resolve again, even after the slot is reused.
type ConstraintHandle struct {
	index      uint32
	generation uint32
}

func (h ConstraintHandle) IsZero() bool { return h.generation == 0 }

// Constraint is a registered constraint. Disabled constraints stay in the
// arena and exert no force.
type Constraint struct {
	handle  ConstraintHandle
	spec    ConstraintSpec
	enabled bool

	steering float64
	drive    float64
	impulse  float64
}

func (c *Constraint) Handle() ConstraintHandle { return c.handle }
func (c *Constraint) Kind() ConstraintKind     { return c.spec.Kind }
func (c *Constraint) Spec() ConstraintSpec     { return c.spec }
func (c *Constraint) Enabled() bool            { return c.enabled }
func (c *Constraint) Bodies() (BodyID, BodyID) { return c.spec.A, c.spec.B }

func (c *Constraint) Involves(id BodyID) bool {
	return c.spec.A == id || (c.spec.B != 0 && c.spec.B == id)
}

// SetSteering rotates a wheel's hinge axis about the chassis up axis.
// It has no effect on other kinds.
func (c *Constraint) SetSteering(angle float64) {
	if c.spec.Kind == ConstraintWheel {
		c.steering = angle
	}
}

func (c *Constraint) Steering() float64 { return c.steering }

// SetDriveForce sets the torque applied to the wheel about its axis every
// step. It has no effect on other kinds.
func (c *Constraint) SetDriveForce(f float64) {
	if c.spec.Kind == ConstraintWheel {
		c.drive = f
	}
}

func (c *Constraint) DriveForce() float64 { return c.drive }

// Impulse is the summed solver impulse of the last step.
func (c *Constraint) Impulse() float64 { return c.impulse }

// steeredAxis is the hinge axis in the chassis frame after steering.
func (c *Constraint) steeredAxis() mgl64.Vec3 {
	axis := c.spec.Axis.Normalize()
	if c.steering == 0 {
		return axis
	}
	return mgl64.QuatRotate(c.steering, c.spec.Up.Normalize()).Rotate(axis)
}

type arenaSlot struct {
	c          *Constraint
	generation uint32
}

// constraintArena stores constraints in slots addressed by index and
// generation. Removal empties a slot in place, so positions of other
// constraints never shift.
type constraintArena struct {
	slots []arenaSlot
	free  []uint32
	live  int
}

func (a *constraintArena) add(spec ConstraintSpec) *Constraint {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot{})
	}
	slot := &a.slots[idx]
	slot.generation++
	c := &Constraint{
		handle:  ConstraintHandle{index: idx, generation: slot.generation},
		spec:    spec,
		enabled: true,
	}
	slot.c = c
	a.live++
	return c
}

func (a *constraintArena) get(h ConstraintHandle) (*Constraint, bool) {
	if h.IsZero() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	slot := a.slots[h.index]
	if slot.c == nil || slot.generation != h.generation {
		return nil, false
	}
	return slot.c, true
}

func (a *constraintArena) remove(h ConstraintHandle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	a.slots[h.index].c = nil
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// each visits live constraints in slot order. fn may remove constraints.
func (a *constraintArena) each(fn func(c *Constraint)) {
	for i := range a.slots {
		if c := a.slots[i].c; c != nil {
			fn(c)
		}
	}
}

func (a *constraintArena) len() int { return a.live }
