package integrators

import "github.com/san-kum/physlab/internal/dynamo"

// Verlet is velocity Verlet for forces that stay constant over the step:
// x += v*dt + a*dt²/2, v += a*dt.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Integrate(m *dynamo.Motion, dt float64) {
	if m.InvMass == 0 {
		return
	}
	acc := m.Force.Mul(m.InvMass)
	alpha := m.InvInertia.Mul3x1(m.Torque)

	m.Position = m.Position.Add(m.Velocity.Mul(dt)).Add(acc.Mul(0.5 * dt * dt))
	halfSpin := m.AngularVelocity.Add(alpha.Mul(0.5 * dt))
	m.Orientation = integrateOrientation(m.Orientation, halfSpin, dt)

	m.Velocity = m.Velocity.Add(acc.Mul(dt))
	m.AngularVelocity = m.AngularVelocity.Add(alpha.Mul(dt))
}
