// Package interact turns pointer input into body drags.
//
// A pointer down that hits a pickable proxy opens a session on its body and
// disables every constraint attached to it. While the pointer moves the
// body follows the drag plane with zero velocity. Releasing re-enables the
// constraints the session disabled.
package interact

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
)

type State int

const (
	Idle State = iota
	Selected
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

type PlaneMode int

const (
	// PlaneFixed drags on Options.PlanePoint / Options.PlaneNormal.
	PlaneFixed PlaneMode = iota
	// PlaneCamera drags on the plane through the pick point facing the ray.
	PlaneCamera
)

type Options struct {
	Plane       PlaneMode
	PlanePoint  mgl64.Vec3
	PlaneNormal mgl64.Vec3
	// ThrowScale > 0 gives released bodies the drag velocity times the
	// scale. Zero releases at rest.
	ThrowScale float64
}

// DefaultOptions drags on the z = 0 plane and releases at rest.
func DefaultOptions() Options {
	return Options{Plane: PlaneFixed, PlaneNormal: mgl64.Vec3{0, 0, 1}}
}

// RayCaster builds world-space rays from normalised device coordinates.
type RayCaster interface {
	Ray(ndcX, ndcY float64) dynamo.Ray
}

type ProxySource interface {
	All() []*render.Proxy
}

type sample struct {
	pos mgl64.Vec3
	t   float64
}

// Session exists between pointer down and pointer up.
type Session struct {
	Body        physics.BodyID
	Proxy       *render.Proxy
	Detached    []physics.ConstraintHandle
	PlanePoint  mgl64.Vec3
	PlaneNormal mgl64.Vec3
	Depth       float64

	target     mgl64.Vec3
	hasTarget  bool
	samples    [2]sample
	numSamples int
}

func (s *Session) addSample(p mgl64.Vec3, t float64) {
	if s.numSamples > 0 && s.samples[1].t == t {
		s.samples[1].pos = p
		return
	}
	s.samples[0] = s.samples[1]
	s.samples[1] = sample{pos: p, t: t}
	if s.numSamples < 2 {
		s.numSamples++
	}
}

func (s *Session) velocity() mgl64.Vec3 {
	if s.numSamples < 2 {
		return mgl64.Vec3{}
	}
	dt := s.samples[1].t - s.samples[0].t
	if dt <= 0 {
		return mgl64.Vec3{}
	}
	return s.samples[1].pos.Sub(s.samples[0].pos).Mul(1 / dt)
}

type Controller struct {
	world   *physics.World
	sync    *render.Sync
	camera  RayCaster
	proxies ProxySource
	opts    Options
	logger  *log.Logger

	state   State
	session *Session
	onMiss  func(ray dynamo.Ray)
}

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithMissHandler is called with the pick ray when a pointer down hits
// nothing.
func WithMissHandler(fn func(ray dynamo.Ray)) Option {
	return func(c *Controller) { c.onMiss = fn }
}

func New(world *physics.World, sync *render.Sync, camera RayCaster, proxies ProxySource, opts Options, extra ...Option) *Controller {
	if opts.PlaneNormal.Len() == 0 {
		opts.PlaneNormal = mgl64.Vec3{0, 0, 1}
	}
	c := &Controller{
		world:   world,
		sync:    sync,
		camera:  camera,
		proxies: proxies,
		opts:    opts,
		logger:  log.New(io.Discard),
	}
	for _, o := range extra {
		o(c)
	}
	return c
}

func (c *Controller) State() State     { return c.state }
func (c *Controller) Dragging() bool   { return c.state == Dragging }
func (c *Controller) Options() Options { return c.opts }

func (c *Controller) Selection() (physics.BodyID, bool) {
	if c.session == nil {
		return 0, false
	}
	return c.session.Body, true
}

func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// PointerDown picks the nearest proxy under the pointer. It reports whether
// a session was opened. Calls while a session exists are ignored.
func (c *Controller) PointerDown(x, y float64) bool {
	if c.session != nil {
		return false
	}
	ray := c.camera.Ray(x, y)
	hit, ok := render.Pick(ray, c.proxies.All())
	if !ok {
		if c.onMiss != nil {
			c.onMiss(ray)
		}
		return false
	}
	id, ok := c.sync.ProxyBody(hit.Proxy)
	if !ok {
		c.logger.Debug("picked unbound proxy", "proxy", hit.Proxy.Name)
		return false
	}
	body, ok := c.world.Body(id)
	if !ok || body.IsStatic() {
		return false
	}

	s := &Session{Body: id, Proxy: hit.Proxy, Depth: hit.Distance}
	for _, h := range c.world.ConstraintsOf(id) {
		con, err := c.world.Constraint(h)
		if err != nil || !con.Enabled() {
			continue
		}
		if err := c.world.SetConstraintEnabled(h, false); err == nil {
			s.Detached = append(s.Detached, h)
		}
	}
	switch c.opts.Plane {
	case PlaneCamera:
		s.PlanePoint = hit.Point
		s.PlaneNormal = ray.Direction.Mul(-1)
	default:
		s.PlanePoint = c.opts.PlanePoint
		s.PlaneNormal = c.opts.PlaneNormal
	}
	s.addSample(body.Position(), c.world.Time())

	c.session = s
	c.state = Selected
	c.logger.Debug("picked", "body", id, "proxy", hit.Proxy.Name, "detached", len(s.Detached))
	return true
}

// PointerMove records the drag target for the next ApplyPending.
func (c *Controller) PointerMove(x, y float64) {
	if c.session == nil {
		return
	}
	ray := c.camera.Ray(x, y)
	p, _, ok := ray.IntersectPlane(c.session.PlanePoint, c.session.PlaneNormal)
	if !ok {
		return
	}
	c.session.target = p
	c.session.hasTarget = true
	c.state = Dragging
}

// ApplyPending holds the dragged body at the current target with zero
// velocity and re-syncs its proxy. It runs every frame after the render
// sync so the drag overrides the step.
func (c *Controller) ApplyPending() {
	s := c.session
	if s == nil || !s.hasTarget {
		return
	}
	body, ok := c.world.Body(s.Body)
	if !ok {
		c.logger.Debug("dragged body removed", "body", s.Body)
		c.Cancel()
		return
	}
	body.Teleport(s.target)
	body.SetVelocity(mgl64.Vec3{})
	body.SetAngularVelocity(mgl64.Vec3{})
	body.WakeUp()
	s.addSample(s.target, c.world.Time())
	c.sync.SyncBody(c.world, s.Body)
}

// PointerUp ends the session and re-enables the detached constraints.
func (c *Controller) PointerUp() {
	s := c.session
	if s == nil {
		return
	}
	c.ApplyPending()
	if c.session == nil {
		return
	}
	for _, h := range s.Detached {
		if err := c.world.SetConstraintEnabled(h, true); err != nil {
			c.logger.Debug("constraint gone before release", "err", err)
		}
	}
	if body, ok := c.world.Body(s.Body); ok {
		v := mgl64.Vec3{}
		if c.opts.ThrowScale > 0 {
			v = s.velocity().Mul(c.opts.ThrowScale)
		}
		body.SetVelocity(v)
		body.SetAngularVelocity(mgl64.Vec3{})
	}
	c.session = nil
	c.state = Idle
}

// Cancel drops the session without re-enabling its constraints.
func (c *Controller) Cancel() {
	c.session = nil
	c.state = Idle
}
