package actuation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/physics"
)

// VehicleActuator drives and steers wheel constraints.
type VehicleActuator struct {
	World  *physics.World
	Wheels []physics.ConstraintHandle
	// Driven and Steered index into Wheels.
	Driven  []int
	Steered []int

	MaxForce float64
	MaxSteer float64
	// BoostFactor scales the drive force while Boost is held. Values <= 1
	// disable boosting.
	BoostFactor float64
}

// Force is the drive force for the current action state: MaxForce forward,
// half of it in reverse, zero when neither or both are held.
func (v *VehicleActuator) Force(m *Map) float64 {
	var f float64
	switch m.Axis(Forward, Backward) {
	case 1:
		f = v.MaxForce
	case -1:
		f = -v.MaxForce / 2
	}
	if v.BoostFactor > 1 && m.Held(Boost) {
		f *= v.BoostFactor
	}
	return f
}

func (v *VehicleActuator) Steering(m *Map) float64 {
	return m.Axis(Left, Right) * v.MaxSteer
}

func (v *VehicleActuator) Actuate(m *Map, _ float64) {
	force, steer := v.Force(m), v.Steering(m)
	for _, i := range v.Driven {
		if c := v.wheel(i); c != nil {
			c.SetDriveForce(force)
		}
	}
	for _, i := range v.Steered {
		if c := v.wheel(i); c != nil {
			c.SetSteering(steer)
		}
	}
}

func (v *VehicleActuator) wheel(i int) *physics.Constraint {
	if i < 0 || i >= len(v.Wheels) {
		return nil
	}
	c, err := v.World.Constraint(v.Wheels[i])
	if err != nil {
		return nil
	}
	return c
}

// ReferenceStep is the step length at which ImpulseActuator applies its
// impulses unscaled.
const ReferenceStep = 1.0 / 60

// ImpulseActuator pushes a body while directions are held. Impulse and Jump
// are per ReferenceStep and scale with the actual step, so retuning the
// fixed timestep keeps speeds unchanged. Forward is -z.
type ImpulseActuator struct {
	World       *physics.World
	Body        physics.BodyID
	Impulse     float64
	Jump        float64
	BoostFactor float64
}

func (p *ImpulseActuator) Actuate(m *Map, h float64) {
	b, ok := p.World.Body(p.Body)
	if !ok {
		return
	}
	dir := mgl64.Vec3{m.Axis(Right, Left), 0, -m.Axis(Forward, Backward)}
	rate := h / ReferenceStep
	scale := p.Impulse * rate
	if p.BoostFactor > 1 && m.Held(Boost) {
		scale *= p.BoostFactor
	}
	if dir.Len() > 0 {
		b.ApplyImpulse(dir.Mul(scale), b.Position())
	}
	if m.Held(Jump) && p.Jump > 0 {
		b.ApplyImpulse(mgl64.Vec3{0, p.Jump * rate, 0}, b.Position())
	}
}
