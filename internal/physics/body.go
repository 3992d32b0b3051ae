package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

// BodyID identifies a body inside one world. Zero is never assigned.
type BodyID uint32

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

func (s SleepState) String() string {
	switch s {
	case Awake:
		return "awake"
	case Sleepy:
		return "sleepy"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

const (
	DefaultLinearDamping   = 0.01
	DefaultAngularDamping  = 0.01
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
)

// BodyOptions describes a body to add to a world. A zero Orientation means
// identity. Zero sleep limits take the package defaults; damping is used as
// given.
type BodyOptions struct {
	Name            string
	Mass            float64
	Shape           Shape
	Material        Material
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	LinearDamping   float64
	AngularDamping  float64
	SleepSpeedLimit float64
	SleepTimeLimit  float64
}

func (o BodyOptions) validate() error {
	if math.IsNaN(o.Mass) || math.IsInf(o.Mass, 0) || o.Mass < 0 {
		return dynamo.Invalid("mass", o.Mass, "must be finite and >= 0")
	}
	if err := o.Shape.Validate(); err != nil {
		return err
	}
	if o.Shape.Kind == ShapePlane && o.Mass != 0 {
		return dynamo.Invalid("mass", o.Mass, "planes must be static")
	}
	if o.LinearDamping < 0 || o.LinearDamping > 1 {
		return dynamo.Invalid("linear damping", o.LinearDamping, "must be within [0, 1]")
	}
	if o.AngularDamping < 0 || o.AngularDamping > 1 {
		return dynamo.Invalid("angular damping", o.AngularDamping, "must be within [0, 1]")
	}
	if o.SleepSpeedLimit < 0 || o.SleepTimeLimit < 0 {
		return dynamo.Invalid("sleep limits", [2]float64{o.SleepSpeedLimit, o.SleepTimeLimit}, "must be >= 0")
	}
	for _, v := range []mgl64.Vec3{o.Position, o.Velocity, o.AngularVelocity} {
		if !dynamo.IsFiniteVec(v) {
			return dynamo.Invalid("initial state", v, "must be finite")
		}
	}
	return nil
}

// Body is a rigid body owned by a World. Its state changes only through
// stepping or through the explicit setters below, all of which wake it.
type Body struct {
	id       BodyID
	name     string
	mass     float64
	shape    Shape
	material Material

	motion          dynamo.Motion
	invInertiaLocal mgl64.Vec3
	lastFinite      dynamo.Motion

	linearDamping  float64
	angularDamping float64

	sleepState      SleepState
	sleepSpeedLimit float64
	sleepTimeLimit  float64
	sleepyTime      float64

	vlambda mgl64.Vec3
	wlambda mgl64.Vec3
}

func newBody(id BodyID, o BodyOptions) *Body {
	q := o.Orientation
	if q == (mgl64.Quat{}) {
		q = mgl64.QuatIdent()
	}
	b := &Body{
		id:              id,
		name:            o.Name,
		mass:            o.Mass,
		shape:           o.Shape,
		material:        o.Material,
		linearDamping:   o.LinearDamping,
		angularDamping:  o.AngularDamping,
		sleepSpeedLimit: o.SleepSpeedLimit,
		sleepTimeLimit:  o.SleepTimeLimit,
	}
	if b.sleepSpeedLimit == 0 {
		b.sleepSpeedLimit = DefaultSleepSpeedLimit
	}
	if b.sleepTimeLimit == 0 {
		b.sleepTimeLimit = DefaultSleepTimeLimit
	}
	b.motion = dynamo.Motion{
		Position:        o.Position,
		Orientation:     q.Normalize(),
		Velocity:        o.Velocity,
		AngularVelocity: o.AngularVelocity,
	}
	if o.Mass > 0 {
		b.motion.InvMass = 1 / o.Mass
		inertia := o.Shape.Inertia(o.Mass)
		for i, v := range inertia {
			if v > 0 {
				b.invInertiaLocal[i] = 1 / v
			}
		}
	} else {
		b.motion.Velocity = mgl64.Vec3{}
		b.motion.AngularVelocity = mgl64.Vec3{}
	}
	b.updateInertiaWorld()
	b.lastFinite = b.motion
	return b
}

func (b *Body) ID() BodyID                  { return b.id }
func (b *Body) Name() string                { return b.name }
func (b *Body) Mass() float64               { return b.mass }
func (b *Body) InvMass() float64            { return b.motion.InvMass }
func (b *Body) Shape() Shape                { return b.shape }
func (b *Body) Material() Material          { return b.material }
func (b *Body) Position() mgl64.Vec3        { return b.motion.Position }
func (b *Body) Orientation() mgl64.Quat     { return b.motion.Orientation }
func (b *Body) Velocity() mgl64.Vec3        { return b.motion.Velocity }
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.motion.AngularVelocity }
func (b *Body) SleepState() SleepState      { return b.sleepState }
func (b *Body) IsStatic() bool              { return b.mass == 0 }

func (b *Body) Transform() dynamo.Transform { return b.motion.Transform() }

// Motion returns a copy of the integrable state.
func (b *Body) Motion() dynamo.Motion { return b.motion }

// Teleport writes the position directly and wakes the body. Static bodies
// can be repositioned this way; stepping never moves them.
func (b *Body) Teleport(p mgl64.Vec3) {
	b.motion.Position = p
	b.WakeUp()
}

func (b *Body) SetOrientation(q mgl64.Quat) {
	b.motion.Orientation = q.Normalize()
	b.updateInertiaWorld()
	b.WakeUp()
}

func (b *Body) SetVelocity(v mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.motion.Velocity = v
	b.WakeUp()
}

func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.motion.AngularVelocity = w
	b.WakeUp()
}

// ApplyForce accumulates a force at a world point for the next step.
func (b *Body) ApplyForce(f, worldPoint mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.motion.Force = b.motion.Force.Add(f)
	r := worldPoint.Sub(b.motion.Position)
	b.motion.Torque = b.motion.Torque.Add(r.Cross(f))
	b.WakeUp()
}

func (b *Body) ApplyCentralForce(f mgl64.Vec3) {
	b.ApplyForce(f, b.motion.Position)
}

func (b *Body) ApplyTorque(t mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.motion.Torque = b.motion.Torque.Add(t)
	b.WakeUp()
}

// ApplyImpulse changes velocity immediately as if hit at a world point.
func (b *Body) ApplyImpulse(j, worldPoint mgl64.Vec3) {
	if b.IsStatic() {
		return
	}
	b.motion.Velocity = b.motion.Velocity.Add(j.Mul(b.motion.InvMass))
	r := worldPoint.Sub(b.motion.Position)
	b.motion.AngularVelocity = b.motion.AngularVelocity.Add(b.motion.InvInertia.Mul3x1(r.Cross(j)))
	b.WakeUp()
}

func (b *Body) WakeUp() {
	b.sleepState = Awake
	b.sleepyTime = 0
}

func (b *Body) Sleep() {
	if b.IsStatic() {
		return
	}
	b.sleepState = Sleeping
	b.motion.Velocity = mgl64.Vec3{}
	b.motion.AngularVelocity = mgl64.Vec3{}
}

func (b *Body) KineticEnergy() float64 {
	if b.IsStatic() {
		return 0
	}
	v := b.motion.Velocity
	lin := 0.5 * b.mass * v.Dot(v)
	w := b.motion.AngularVelocity
	inertia := b.shape.Inertia(b.mass)
	local := b.motion.Orientation.Conjugate().Rotate(w)
	ang := 0.5 * (inertia[0]*local[0]*local[0] + inertia[1]*local[1]*local[1] + inertia[2]*local[2]*local[2])
	return lin + ang
}

// PointToWorld maps a body-local point into world space.
func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.motion.Position.Add(b.motion.Orientation.Rotate(local))
}

func (b *Body) VectorToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.motion.Orientation.Rotate(local)
}

func (b *Body) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.motion.Orientation.Conjugate().Rotate(world.Sub(b.motion.Position))
}

// solverInvMass is zero for static and sleeping bodies so the solver treats
// them as immovable.
func (b *Body) solverInvMass() float64 {
	if b.sleepState == Sleeping {
		return 0
	}
	return b.motion.InvMass
}

func (b *Body) solverInvInertia() mgl64.Mat3 {
	if b.sleepState == Sleeping {
		return mgl64.Mat3{}
	}
	return b.motion.InvInertia
}

func (b *Body) updateInertiaWorld() {
	r := b.motion.Orientation.Mat4().Mat3()
	b.motion.InvInertia = r.Mul3(mgl64.Diag3(b.invInertiaLocal)).Mul3(r.Transpose())
}

func (b *Body) applyDamping(dt float64) {
	if b.linearDamping > 0 {
		b.motion.Velocity = b.motion.Velocity.Mul(math.Pow(1-b.linearDamping, dt))
	}
	if b.angularDamping > 0 {
		b.motion.AngularVelocity = b.motion.AngularVelocity.Mul(math.Pow(1-b.angularDamping, dt))
	}
}

// sleepTick advances the sleep state machine. It reports whether the body
// fell asleep during this call.
func (b *Body) sleepTick(dt float64) bool {
	if b.IsStatic() || b.sleepState == Sleeping {
		return false
	}
	v := b.motion.Velocity
	w := b.motion.AngularVelocity
	speedSq := v.Dot(v) + w.Dot(w)
	limitSq := b.sleepSpeedLimit * b.sleepSpeedLimit
	switch {
	case speedSq >= limitSq:
		b.sleepState = Awake
		b.sleepyTime = 0
	case b.sleepState == Awake:
		b.sleepState = Sleepy
		b.sleepyTime = 0
	default:
		b.sleepyTime += dt
		if b.sleepyTime > b.sleepTimeLimit {
			b.Sleep()
			return true
		}
	}
	return false
}

func (b *Body) clearForces() {
	b.motion.Force = mgl64.Vec3{}
	b.motion.Torque = mgl64.Vec3{}
}
