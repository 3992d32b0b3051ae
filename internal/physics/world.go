package physics

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
)

// Config holds the world settings. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Gravity          mgl64.Vec3
	FixedTimestep    float64
	MaxSubSteps      int
	SolverIterations int
	SolverTolerance  float64
	AllowSleep       bool

	// MaxFrameDelta caps the frame time fed to the accumulator.
	MaxFrameDelta float64

	// StretchTolerance is the relative distance error of a distance
	// constraint that raises a stretch warning.
	StretchTolerance float64
	// PenetrationTolerance is the contact depth that raises a warning.
	PenetrationTolerance float64

	Integrator      string
	ContactMaterial ContactMaterial
}

func DefaultConfig() Config {
	return Config{
		Gravity:              mgl64.Vec3{0, -9.82, 0},
		FixedTimestep:        1.0 / 60.0,
		MaxSubSteps:          10,
		SolverIterations:     10,
		SolverTolerance:      1e-7,
		AllowSleep:           false,
		MaxFrameDelta:        0.1,
		StretchTolerance:     0.05,
		PenetrationTolerance: 0.25,
		Integrator:           integrators.Default,
		ContactMaterial:      DefaultContactMaterial(),
	}
}

func (c Config) Validate() error {
	if !dynamo.IsFiniteVec(c.Gravity) {
		return dynamo.Invalid("gravity", c.Gravity, "must be finite")
	}
	if !(c.FixedTimestep > 0) || math.IsInf(c.FixedTimestep, 0) {
		return dynamo.Invalid("fixed timestep", c.FixedTimestep, "must be positive")
	}
	if c.MaxSubSteps < 1 {
		return dynamo.Invalid("max sub steps", c.MaxSubSteps, "must be at least 1")
	}
	if c.SolverIterations < 1 {
		return dynamo.Invalid("solver iterations", c.SolverIterations, "must be at least 1")
	}
	if math.IsNaN(c.SolverTolerance) || c.SolverTolerance < 0 {
		return dynamo.Invalid("solver tolerance", c.SolverTolerance, "must be >= 0")
	}
	if !(c.MaxFrameDelta > 0) {
		return dynamo.Invalid("max frame delta", c.MaxFrameDelta, "must be positive")
	}
	if c.StretchTolerance < 0 || c.PenetrationTolerance < 0 {
		return dynamo.Invalid("tolerances", [2]float64{c.StretchTolerance, c.PenetrationTolerance}, "must be >= 0")
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return err
	}
	return c.ContactMaterial.Validate()
}

// Impact is reported when two bodies start touching.
type Impact struct {
	A, B  BodyID
	Point mgl64.Vec3
	Speed float64
	Time  float64
}

// ImpactObserver is an optional extension of dynamo.Observer.
type ImpactObserver interface {
	OnImpact(Impact)
}

type Option func(*World)

func WithLogger(l *log.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithIntegrator overrides the integrator named in the config.
func WithIntegrator(i dynamo.Integrator) Option {
	return func(w *World) { w.integrator = i }
}

type pairID struct{ a, b BodyID }

// World owns bodies, constraints and contact materials and advances them
// with a fixed timestep. It is not safe for concurrent use.
type World struct {
	cfg        Config
	integrator dynamo.Integrator
	logger     *log.Logger
	solver     gaussSeidel

	bodies      []*Body
	index       map[BodyID]int
	nextID      BodyID
	constraints constraintArena
	materials   *materialTable

	accumulator float64
	time        float64
	steps       int

	preStep   []func(h float64)
	observers []dynamo.Observer

	contacts []contact
	touching map[pairID]bool
	eqs      []*equation

	diag      Diagnostics
	warnCount map[string]int
}

func NewWorld(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:        cfg,
		integrator: integ,
		logger:     log.New(io.Discard),
		solver:     gaussSeidel{iterations: cfg.SolverIterations, tolerance: cfg.SolverTolerance},
		index:      make(map[BodyID]int),
		materials:  newMaterialTable(cfg.ContactMaterial),
		touching:   make(map[pairID]bool),
		warnCount:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *World) Config() Config         { return w.cfg }
func (w *World) Time() float64          { return w.time }
func (w *World) StepCount() int         { return w.steps }
func (w *World) Accumulator() float64   { return w.accumulator }
func (w *World) Gravity() mgl64.Vec3    { return w.cfg.Gravity }
func (w *World) NumConstraints() int    { return w.constraints.len() }
func (w *World) Logger() *log.Logger    { return w.logger }
func (w *World) SetAllowSleep(on bool)  { w.cfg.AllowSleep = on }
func (w *World) SetGravity(g mgl64.Vec3) { w.cfg.Gravity = g }

func (w *World) AddBody(o BodyOptions) (*Body, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	w.nextID++
	b := newBody(w.nextID, o)
	w.index[b.id] = len(w.bodies)
	w.bodies = append(w.bodies, b)
	w.logger.Debug("body added", "id", b.id, "name", b.name, "shape", b.shape.Kind, "mass", b.mass)
	return b, nil
}

// RemoveBody removes the body and every constraint that references it.
func (w *World) RemoveBody(id BodyID) error {
	i, ok := w.index[id]
	if !ok {
		return fmt.Errorf("remove body %d: %w", id, dynamo.ErrUnknownBody)
	}
	w.constraints.each(func(c *Constraint) {
		if c.Involves(id) {
			w.constraints.remove(c.handle)
		}
	})
	w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
	delete(w.index, id)
	for j := i; j < len(w.bodies); j++ {
		w.index[w.bodies[j].id] = j
	}
	for p := range w.touching {
		if p.a == id || p.b == id {
			delete(w.touching, p)
		}
	}
	return nil
}

func (w *World) Body(id BodyID) (*Body, bool) {
	i, ok := w.index[id]
	if !ok {
		return nil, false
	}
	return w.bodies[i], true
}

// Bodies returns the bodies in insertion order. The slice is a copy.
func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Transform implements the render side's body source.
func (w *World) Transform(id BodyID) (dynamo.Transform, bool) {
	b, ok := w.Body(id)
	if !ok {
		return dynamo.Transform{}, false
	}
	return b.Transform(), true
}

func (w *World) AddConstraint(spec ConstraintSpec) (ConstraintHandle, error) {
	if err := spec.validate(); err != nil {
		return ConstraintHandle{}, err
	}
	if _, ok := w.index[spec.A]; !ok {
		return ConstraintHandle{}, fmt.Errorf("constraint body A %d: %w", spec.A, dynamo.ErrUnknownBody)
	}
	if spec.B != 0 {
		if _, ok := w.index[spec.B]; !ok {
			return ConstraintHandle{}, fmt.Errorf("constraint body B %d: %w", spec.B, dynamo.ErrUnknownBody)
		}
	}
	c := w.constraints.add(spec)
	w.logger.Debug("constraint added", "kind", spec.Kind, "a", spec.A, "b", spec.B)
	return c.handle, nil
}

// RemoveConstraint frees the handle. Other handles stay valid, so this is
// safe while a drag session holds detached constraints.
func (w *World) RemoveConstraint(h ConstraintHandle) error {
	if !w.constraints.remove(h) {
		return dynamo.ErrUnknownConstraint
	}
	return nil
}

func (w *World) Constraint(h ConstraintHandle) (*Constraint, error) {
	c, ok := w.constraints.get(h)
	if !ok {
		return nil, dynamo.ErrUnknownConstraint
	}
	return c, nil
}

// SetConstraintEnabled flips the enabled flag. Bodies of the constraint are
// woken so a re-attached string takes effect immediately.
func (w *World) SetConstraintEnabled(h ConstraintHandle, enabled bool) error {
	c, ok := w.constraints.get(h)
	if !ok {
		return dynamo.ErrUnknownConstraint
	}
	c.enabled = enabled
	for _, id := range []BodyID{c.spec.A, c.spec.B} {
		if b, ok := w.Body(id); ok {
			b.WakeUp()
		}
	}
	return nil
}

// ConstraintsOf lists the handles of constraints that reference id, in
// arena order.
func (w *World) ConstraintsOf(id BodyID) []ConstraintHandle {
	var out []ConstraintHandle
	w.constraints.each(func(c *Constraint) {
		if c.Involves(id) {
			out = append(out, c.handle)
		}
	})
	return out
}

func (w *World) Constraints() []*Constraint {
	out := make([]*Constraint, 0, w.constraints.len())
	w.constraints.each(func(c *Constraint) { out = append(out, c) })
	return out
}

func (w *World) AddContactMaterial(cm ContactMaterial) error {
	if err := cm.Validate(); err != nil {
		return err
	}
	w.materials.add(cm)
	return nil
}

// ContactMaterialFor resolves the parameters used between two bodies.
func (w *World) ContactMaterialFor(a, b *Body) ContactMaterial {
	return w.materials.lookup(a.material, b.material)
}

// OnPreStep registers fn to run at the start of every fixed step, before
// forces are accumulated.
func (w *World) OnPreStep(fn func(h float64)) {
	w.preStep = append(w.preStep, fn)
}

func (w *World) AddObserver(o dynamo.Observer) {
	w.observers = append(w.observers, o)
}

// Step feeds frameDt into the accumulator and runs fixed passes of fixedDt,
// at most maxSubSteps of them. When the cap is reached the remaining
// backlog is dropped. It returns the number of passes executed.
func (w *World) Step(fixedDt, frameDt float64, maxSubSteps int) (int, error) {
	if !(fixedDt > 0) || math.IsInf(fixedDt, 0) {
		return 0, dynamo.Invalid("fixed timestep", fixedDt, "must be positive")
	}
	if maxSubSteps < 1 {
		return 0, dynamo.Invalid("max sub steps", maxSubSteps, "must be at least 1")
	}
	if math.IsNaN(frameDt) {
		return 0, dynamo.Invalid("frame delta", frameDt, "must be a number")
	}
	frameDt = math.Max(0, math.Min(frameDt, w.cfg.MaxFrameDelta))

	w.accumulator += frameDt
	passes := 0
	for w.accumulator >= fixedDt && passes < maxSubSteps {
		w.internalStep(fixedDt)
		w.accumulator -= fixedDt
		passes++
	}
	if passes == maxSubSteps {
		w.accumulator = math.Mod(w.accumulator, fixedDt)
	}
	return passes, nil
}

// Advance steps with the configured timestep and sub-step cap.
func (w *World) Advance(frameDt float64) int {
	n, _ := w.Step(w.cfg.FixedTimestep, frameDt, w.cfg.MaxSubSteps)
	return n
}

// StepFixed runs exactly one fixed pass of h, bypassing the accumulator.
func (w *World) StepFixed(h float64) {
	w.internalStep(h)
}

func (w *World) internalStep(h float64) {
	for _, fn := range w.preStep {
		fn(h)
	}

	for _, b := range w.bodies {
		if b.IsStatic() || b.sleepState == Sleeping {
			continue
		}
		b.motion.Force = b.motion.Force.Add(w.cfg.Gravity.Mul(b.mass))
	}
	w.applyDrive()

	w.detectContacts()
	w.buildEquations()
	w.diag.LastIterations = w.solver.solve(w.eqs, w.bodies, h)

	for _, b := range w.bodies {
		if b.IsStatic() || b.sleepState == Sleeping {
			b.clearForces()
			continue
		}
		b.applyDamping(h)
		w.integrator.Integrate(&b.motion, h)
		b.updateInertiaWorld()
		b.clearForces()
	}

	w.time += h
	w.steps++

	w.checkFinite()
	if w.cfg.AllowSleep {
		for _, b := range w.bodies {
			if b.sleepTick(h) {
				w.logger.Debug("body asleep", "id", b.id, "t", w.time)
			}
		}
	}
	w.checkStretch()

	for _, o := range w.observers {
		o.OnStep(w.steps, w.time)
	}
}

func (w *World) applyDrive() {
	w.constraints.each(func(c *Constraint) {
		c.impulse = 0
		if !c.enabled || c.spec.Kind != ConstraintWheel || c.drive == 0 {
			return
		}
		wheel, ok := w.Body(c.spec.B)
		if !ok {
			return
		}
		axis := wheel.VectorToWorld(c.spec.Axis.Normalize())
		wheel.ApplyTorque(axis.Mul(c.drive))
	})
}

func (w *World) detectContacts() {
	w.contacts = w.contacts[:0]
	seen := make(map[pairID]bool, len(w.touching))
	connected := w.connectedPairs()
	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			a, b := w.bodies[i], w.bodies[j]
			if !canCollide(a, b) || connected[pairID{a.id, b.id}] {
				continue
			}
			start := len(w.contacts)
			w.contacts = collide(a, b, w.contacts)
			if len(w.contacts) == start {
				continue
			}
			wakeOnTouch(a, b)
			key := pairID{a.id, b.id}
			seen[key] = true
			if !w.touching[key] {
				w.reportImpact(w.contacts[start:])
			}
		}
	}
	w.touching = seen

	for _, c := range w.contacts {
		if c.depth > w.cfg.PenetrationTolerance && w.cfg.PenetrationTolerance > 0 {
			w.warn(dynamo.Warning{
				Kind:      dynamo.WarnPenetration,
				Step:      w.steps,
				Time:      w.time,
				Subject:   fmt.Sprintf("%s/%s", c.bi.label(), c.bj.label()),
				Magnitude: c.depth,
			})
		}
	}
}

// connectedPairs lists body pairs joined by an enabled constraint that
// suppresses their contacts. Keys use the detection order, lower index
// first.
func (w *World) connectedPairs() map[pairID]bool {
	var out map[pairID]bool
	w.constraints.each(func(c *Constraint) {
		if !c.enabled || c.spec.CollideConnected || c.spec.B == 0 {
			return
		}
		ia, okA := w.index[c.spec.A]
		ib, okB := w.index[c.spec.B]
		if !okA || !okB {
			return
		}
		if out == nil {
			out = make(map[pairID]bool)
		}
		if ia < ib {
			out[pairID{c.spec.A, c.spec.B}] = true
		} else {
			out[pairID{c.spec.B, c.spec.A}] = true
		}
	})
	return out
}

func wakeOnTouch(a, b *Body) {
	wake := func(sleeper, other *Body) {
		if sleeper.sleepState != Sleeping || other.IsStatic() || other.sleepState == Sleeping {
			return
		}
		v, ww := other.motion.Velocity, other.motion.AngularVelocity
		if v.Dot(v)+ww.Dot(ww) >= 2*other.sleepSpeedLimit*other.sleepSpeedLimit {
			sleeper.WakeUp()
		}
	}
	wake(a, b)
	wake(b, a)
}

func (w *World) reportImpact(cs []contact) {
	best := cs[0]
	for _, c := range cs[1:] {
		if c.relativeSpeed() > best.relativeSpeed() {
			best = c
		}
	}
	ev := Impact{
		A:     best.bi.id,
		B:     best.bj.id,
		Point: best.bi.motion.Position.Add(best.ri),
		Speed: math.Max(0, best.relativeSpeed()),
		Time:  w.time,
	}
	for _, o := range w.observers {
		if obs, ok := o.(ImpactObserver); ok {
			obs.OnImpact(ev)
		}
	}
}

func (w *World) buildEquations() {
	w.eqs = w.eqs[:0]
	w.constraints.each(func(c *Constraint) {
		if c.enabled {
			w.eqs = w.constraintEquations(c, w.eqs)
		}
	})
	g := w.cfg.Gravity.Len()
	for _, c := range w.contacts {
		cm := w.materials.lookup(c.bi.material, c.bj.material)
		w.eqs = contactEquations(c, cm, g, w.eqs)
	}
}

func contactEquations(c contact, cm ContactMaterial, gravity float64, out []*equation) []*equation {
	n := c.normal
	xi, xj := c.bi.motion.Position, c.bj.motion.Position
	normal := &equation{
		bi:          c.bi,
		bj:          c.bj,
		linA:        n.Mul(-1),
		angA:        c.ri.Cross(n).Mul(-1),
		linB:        n,
		angB:        c.rj.Cross(n),
		g:           xj.Add(c.rj).Sub(xi.Add(c.ri)).Dot(n),
		contact:     true,
		restitution: cm.Restitution,
		minForce:    0,
		maxForce:    1e6,
		stiffness:   cm.Stiffness,
		relaxation:  cm.Relaxation,
	}
	out = append(out, normal)

	if cm.Friction <= 0 || gravity == 0 {
		return out
	}
	reduced := c.bi.solverInvMass() + c.bj.solverInvMass()
	if reduced > 0 {
		reduced = 1 / reduced
	}
	slip := cm.Friction * gravity * reduced
	t1, t2 := tangents(n)
	for _, t := range []mgl64.Vec3{t1, t2} {
		out = append(out, &equation{
			bi:         c.bi,
			bj:         c.bj,
			linA:       t.Mul(-1),
			angA:       c.ri.Cross(t).Mul(-1),
			linB:       t,
			angB:       c.rj.Cross(t),
			minForce:   -slip,
			maxForce:   slip,
			stiffness:  cm.Stiffness,
			relaxation: cm.Relaxation,
		})
	}
	return out
}

func (w *World) constraintEquations(c *Constraint, out []*equation) []*equation {
	s := c.spec
	bi, ok := w.Body(s.A)
	if !ok {
		return out
	}
	var bj *Body
	if s.B != 0 {
		if bj, ok = w.Body(s.B); !ok {
			return out
		}
	}
	row := func() *equation {
		return &equation{
			bi:         bi,
			bj:         bj,
			minForce:   -s.MaxForce,
			maxForce:   s.MaxForce,
			stiffness:  s.Stiffness,
			relaxation: s.Relaxation,
			owner:      c,
		}
	}

	switch s.Kind {
	case ConstraintDistance:
		d := bj.motion.Position.Sub(bi.motion.Position)
		l := d.Len()
		n := mgl64.Vec3{0, 1, 0}
		if l > 1e-12 {
			n = d.Mul(1 / l)
		}
		e := row()
		e.linA, e.linB = n.Mul(-1), n
		e.g = l - s.Distance
		out = append(out, e)

	case ConstraintPivot, ConstraintWheel:
		ri := bi.VectorToWorld(s.PivotA)
		pi := bi.motion.Position.Add(ri)
		var rj, pj mgl64.Vec3
		if bj != nil {
			rj = bj.VectorToWorld(s.PivotB)
			pj = bj.motion.Position.Add(rj)
		} else {
			pj = s.Anchor
		}
		for _, axis := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
			e := row()
			e.linA, e.angA = axis.Mul(-1), ri.Cross(axis).Mul(-1)
			e.linB, e.angB = axis, rj.Cross(axis)
			e.g = pj.Sub(pi).Dot(axis)
			out = append(out, e)
		}
		if s.Kind != ConstraintWheel {
			break
		}
		axisA := bi.VectorToWorld(c.steeredAxis())
		axisB := bj.VectorToWorld(s.Axis.Normalize())
		t1, t2 := tangents(axisA)
		for _, ni := range []mgl64.Vec3{t1, t2} {
			e := row()
			e.angA = ni.Cross(axisB)
			e.angB = axisB.Cross(ni)
			e.g = ni.Dot(axisB)
			out = append(out, e)
		}
	}
	return out
}

func (w *World) checkFinite() {
	for _, b := range w.bodies {
		if b.motion.IsFinite() {
			b.lastFinite = b.motion
			continue
		}
		b.motion = b.lastFinite
		b.motion.Velocity = mgl64.Vec3{}
		b.motion.AngularVelocity = mgl64.Vec3{}
		b.updateInertiaWorld()
		w.warn(dynamo.Warning{
			Kind:    dynamo.WarnNonFinite,
			Step:    w.steps,
			Time:    w.time,
			Subject: b.label(),
		})
	}
}

func (w *World) checkStretch() {
	if w.cfg.StretchTolerance <= 0 {
		return
	}
	w.constraints.each(func(c *Constraint) {
		if !c.enabled || c.spec.Kind != ConstraintDistance {
			return
		}
		stretch := w.ConstraintError(c)
		if stretch > w.cfg.StretchTolerance {
			w.warn(dynamo.Warning{
				Kind:      dynamo.WarnStretch,
				Step:      w.steps,
				Time:      w.time,
				Subject:   fmt.Sprintf("constraint %d", c.handle.index),
				Magnitude: stretch,
			})
		}
	})
}

// ConstraintError is the current violation of c: relative length error for
// distance constraints and pivot separation for pivots and wheels.
func (w *World) ConstraintError(c *Constraint) float64 {
	bi, ok := w.Body(c.spec.A)
	if !ok {
		return 0
	}
	bj, _ := w.Body(c.spec.B)
	switch c.spec.Kind {
	case ConstraintDistance:
		if bj == nil {
			return 0
		}
		l := bj.motion.Position.Sub(bi.motion.Position).Len()
		return math.Abs(l-c.spec.Distance) / c.spec.Distance
	default:
		pi := bi.PointToWorld(c.spec.PivotA)
		pj := c.spec.Anchor
		if bj != nil {
			pj = bj.PointToWorld(c.spec.PivotB)
		}
		return pj.Sub(pi).Len()
	}
}

func (b *Body) label() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("body %d", b.id)
}
