package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is the pose copied from a body onto its render proxy.
type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

func IdentityTransform() Transform {
	return Transform{Orientation: mgl64.QuatIdent()}
}

// Motion is the integrable state of a rigid body. InvInertia is expressed in
// world space and must be refreshed by the owner after the orientation
// changes.
type Motion struct {
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	Orientation     mgl64.Quat
	AngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	InvMass    float64
	InvInertia mgl64.Mat3
}

func (m *Motion) IsFinite() bool {
	for _, v := range []mgl64.Vec3{m.Position, m.Velocity, m.AngularVelocity, m.Orientation.V} {
		if !IsFiniteVec(v) {
			return false
		}
	}
	return !math.IsNaN(m.Orientation.W) && !math.IsInf(m.Orientation.W, 0)
}

func (m *Motion) Transform() Transform {
	return Transform{Position: m.Position, Orientation: m.Orientation}
}

// Integrator advances a Motion by dt using its accumulated force and torque.
type Integrator interface {
	Integrate(m *Motion, dt float64)
}

// Ray is a half line with a unit direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectPlane returns the point where the ray crosses the plane through
// point with the given normal. ok is false when the ray is parallel to the
// plane or the crossing lies behind the origin.
func (r Ray) IntersectPlane(point, normal mgl64.Vec3) (hit mgl64.Vec3, t float64, ok bool) {
	denom := normal.Dot(r.Direction)
	if math.Abs(denom) < 1e-9 {
		return mgl64.Vec3{}, 0, false
	}
	t = point.Sub(r.Origin).Dot(normal) / denom
	if t < 0 {
		return mgl64.Vec3{}, 0, false
	}
	return r.At(t), t, true
}

func IsFiniteVec(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Observer is notified after every fixed step of the world.
type Observer interface {
	OnStep(step int, t float64)
}
