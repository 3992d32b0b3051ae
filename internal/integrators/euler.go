package integrators

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

// SemiImplicitEuler updates velocity from force first and then position from
// the new velocity. It is the default integrator of the world.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Integrate(m *dynamo.Motion, dt float64) {
	if m.InvMass == 0 {
		return
	}
	m.Velocity = m.Velocity.Add(m.Force.Mul(m.InvMass * dt))
	m.AngularVelocity = m.AngularVelocity.Add(m.InvInertia.Mul3x1(m.Torque).Mul(dt))

	m.Position = m.Position.Add(m.Velocity.Mul(dt))
	m.Orientation = integrateOrientation(m.Orientation, m.AngularVelocity, dt)
}

// ExplicitEuler moves position with the velocity from the start of the step.
// It is kept for comparison runs; it gains energy on oscillators.
type ExplicitEuler struct{}

func NewExplicitEuler() *ExplicitEuler {
	return &ExplicitEuler{}
}

func (e *ExplicitEuler) Integrate(m *dynamo.Motion, dt float64) {
	if m.InvMass == 0 {
		return
	}
	m.Position = m.Position.Add(m.Velocity.Mul(dt))
	m.Orientation = integrateOrientation(m.Orientation, m.AngularVelocity, dt)

	m.Velocity = m.Velocity.Add(m.Force.Mul(m.InvMass * dt))
	m.AngularVelocity = m.AngularVelocity.Add(m.InvInertia.Mul3x1(m.Torque).Mul(dt))
}

// integrateOrientation applies q += 0.5 * w * q * dt and renormalises.
func integrateOrientation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	if w[0] == 0 && w[1] == 0 && w[2] == 0 {
		return q
	}
	spin := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	return q.Add(spin).Normalize()
}
