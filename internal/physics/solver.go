package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// restitutionThreshold is the approach speed below which contacts do
	// not bounce.
	restitutionThreshold = 0.2
	// contactSlop is the penetration left uncorrected to keep resting
	// contacts quiet.
	contactSlop = 0.005
)

// equation is one scalar row of the constraint system, J·v = rhs, in the
// SPOOK formulation. bi or bj may be nil for the static world.
type equation struct {
	bi, bj *Body

	linA, angA mgl64.Vec3
	linB, angB mgl64.Vec3

	g           float64
	contact     bool
	restitution float64

	minForce, maxForce    float64
	stiffness, relaxation float64

	owner *Constraint

	a, b, eps float64
	rhs, invC float64
	lambda    float64
}

func bodyState(b *Body) (v, w, f, tau mgl64.Vec3, invM float64, invI mgl64.Mat3) {
	if b == nil {
		return
	}
	return b.motion.Velocity, b.motion.AngularVelocity, b.motion.Force, b.motion.Torque,
		b.solverInvMass(), b.solverInvInertia()
}

func (e *equation) prepare(h float64) {
	d := e.relaxation
	e.a = 4.0 / (h * (1 + 4*d))
	e.b = (4.0 * d) / (1 + 4*d)
	e.eps = 4.0 / (h * h * e.stiffness * (1 + 4*d))

	vi, wi, fi, ti, mi, ii := bodyState(e.bi)
	vj, wj, fj, tj, mj, ij := bodyState(e.bj)

	gw := e.linA.Dot(vi) + e.linB.Dot(vj) + e.angA.Dot(wi) + e.angB.Dot(wj)

	gimf := e.linA.Dot(fi.Mul(mi)) + e.angA.Dot(ii.Mul3x1(ti)) +
		e.linB.Dot(fj.Mul(mj)) + e.angB.Dot(ij.Mul3x1(tj))

	switch {
	case !e.contact:
		e.rhs = -e.g*e.a - gw*e.b - h*gimf
	case e.restitution > 0 && gw < -restitutionThreshold:
		// Bouncing contact: target a separating speed of e times the
		// approach speed, with no positional term.
		e.rhs = -(1+e.restitution)*gw - h*gimf
	default:
		e.rhs = -math.Min(0, e.g+contactSlop)*e.a - gw*e.b - h*gimf
	}

	c := mi*e.linA.Dot(e.linA) + e.angA.Dot(ii.Mul3x1(e.angA)) +
		mj*e.linB.Dot(e.linB) + e.angB.Dot(ij.Mul3x1(e.angB)) + e.eps
	e.invC = 1 / c
	e.lambda = 0
}

func (e *equation) gwLambda() float64 {
	var sum float64
	if e.bi != nil {
		sum += e.linA.Dot(e.bi.vlambda) + e.angA.Dot(e.bi.wlambda)
	}
	if e.bj != nil {
		sum += e.linB.Dot(e.bj.vlambda) + e.angB.Dot(e.bj.wlambda)
	}
	return sum
}

func (e *equation) addToWlambda(dl float64) {
	if b := e.bi; b != nil {
		b.vlambda = b.vlambda.Add(e.linA.Mul(b.solverInvMass() * dl))
		b.wlambda = b.wlambda.Add(b.solverInvInertia().Mul3x1(e.angA).Mul(dl))
	}
	if b := e.bj; b != nil {
		b.vlambda = b.vlambda.Add(e.linB.Mul(b.solverInvMass() * dl))
		b.wlambda = b.wlambda.Add(b.solverInvInertia().Mul3x1(e.angB).Mul(dl))
	}
}

// gaussSeidel is the projected Gauss-Seidel solver over SPOOK equations.
type gaussSeidel struct {
	iterations int
	tolerance  float64
}

// solve writes the resulting velocity change into every body and returns
// the number of iterations performed.
func (s *gaussSeidel) solve(eqs []*equation, bodies []*Body, h float64) int {
	for _, b := range bodies {
		b.vlambda = mgl64.Vec3{}
		b.wlambda = mgl64.Vec3{}
	}
	if len(eqs) == 0 {
		return 0
	}
	for _, e := range eqs {
		e.prepare(h)
	}

	tolSq := s.tolerance * s.tolerance
	iter := 0
	for iter < s.iterations {
		iter++
		total := 0.0
		for _, e := range eqs {
			dl := e.invC * (e.rhs - e.gwLambda() - e.eps*e.lambda)
			lo, hi := e.minForce*h, e.maxForce*h
			switch {
			case e.lambda+dl < lo:
				dl = lo - e.lambda
			case e.lambda+dl > hi:
				dl = hi - e.lambda
			}
			e.lambda += dl
			total += math.Abs(dl)
			e.addToWlambda(dl)
		}
		if total*total <= tolSq {
			break
		}
	}

	for _, b := range bodies {
		if b.solverInvMass() == 0 {
			continue
		}
		b.motion.Velocity = b.motion.Velocity.Add(b.vlambda)
		b.motion.AngularVelocity = b.motion.AngularVelocity.Add(b.wlambda)
	}
	for _, e := range eqs {
		if e.owner != nil {
			e.owner.impulse += math.Abs(e.lambda)
		}
	}
	return iter
}

// tangents returns two unit vectors orthogonal to n and to each other.
func tangents(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	n = n.Normalize()
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) >= 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	t2 := n.Cross(t1)
	return t1, t2
}
