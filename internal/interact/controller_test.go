package interact_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

type rig struct {
	world   *physics.World
	sync    *render.Sync
	camera  *scene.Camera
	proxies *render.Registry
	ball    *physics.Body
	pivot   *physics.Body
	tether  physics.ConstraintHandle
}

func newRig() *rig {
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl64.Vec3{0, -9.82, 0}
	w, err := physics.NewWorld(cfg)
	Expect(err).NotTo(HaveOccurred())

	r := &rig{world: w, sync: render.NewSync(), proxies: render.NewRegistry()}
	cam := scene.DefaultCamera()
	cam.Position = mgl64.Vec3{0, 0, 10}
	r.camera = &cam

	r.pivot, err = w.AddBody(physics.BodyOptions{Name: "pivot", Position: mgl64.Vec3{0, 3, 0}})
	Expect(err).NotTo(HaveOccurred())
	r.ball, err = w.AddBody(physics.BodyOptions{Name: "ball", Mass: 1, Shape: physics.Sphere(0.5)})
	Expect(err).NotTo(HaveOccurred())
	r.tether, err = w.AddConstraint(physics.Distance(r.ball.ID(), r.pivot.ID(), 3))
	Expect(err).NotTo(HaveOccurred())

	p := r.proxies.Add(render.NewSphere("ball", 0.5, render.DefaultColor))
	Expect(r.sync.Bind(r.ball.ID(), p)).To(Succeed())
	r.sync.Apply(w)
	return r
}

// ndc returns the device coordinates at which p appears.
func (r *rig) ndc(p mgl64.Vec3) (float64, float64) {
	x, y, _, ok := r.camera.Project(p)
	Expect(ok).To(BeTrue())
	return x, y
}

func (r *rig) enabled() bool {
	c, err := r.world.Constraint(r.tether)
	Expect(err).NotTo(HaveOccurred())
	return c.Enabled()
}

var _ = Describe("Controller", func() {
	var (
		r      *rig
		ctl    *interact.Controller
		misses []dynamo.Ray
	)

	BeforeEach(func() {
		r = newRig()
		misses = nil
		ctl = interact.New(r.world, r.sync, r.camera, r.proxies, interact.DefaultOptions(),
			interact.WithMissHandler(func(ray dynamo.Ray) { misses = append(misses, ray) }))
	})

	It("starts idle", func() {
		Expect(ctl.State()).To(Equal(interact.Idle))
		_, ok := ctl.Selection()
		Expect(ok).To(BeFalse())
	})

	Context("when the pointer misses", func() {
		It("stays idle and reports the ray", func() {
			Expect(ctl.PointerDown(0.9, 0.9)).To(BeFalse())
			Expect(ctl.State()).To(Equal(interact.Idle))
			Expect(misses).To(HaveLen(1))
			Expect(r.enabled()).To(BeTrue())
		})
	})

	Context("when the pointer hits a constrained ball", func() {
		BeforeEach(func() {
			Expect(ctl.PointerDown(r.ndc(r.ball.Position()))).To(BeTrue())
		})

		It("selects the body and detaches its string", func() {
			Expect(ctl.State()).To(Equal(interact.Selected))
			id, ok := ctl.Selection()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(r.ball.ID()))
			Expect(r.enabled()).To(BeFalse())
			s, _ := ctl.Session()
			Expect(s.Detached).To(ConsistOf(r.tether))
		})

		It("ignores a second pointer down", func() {
			Expect(ctl.PointerDown(0, 0)).To(BeFalse())
			Expect(ctl.State()).To(Equal(interact.Selected))
		})

		It("holds the ball at the drag target with zero velocity", func() {
			target := mgl64.Vec3{1.5, 1, 0}
			ctl.PointerMove(r.ndc(target))
			Expect(ctl.Dragging()).To(BeTrue())

			for i := 0; i < 10; i++ {
				r.world.Advance(1.0 / 60)
				r.sync.Apply(r.world)
				ctl.ApplyPending()
			}
			Expect(r.ball.Position().ApproxEqualThreshold(target, 1e-6)).To(BeTrue())
			Expect(r.ball.Velocity().Len()).To(BeZero())
			p, _ := r.sync.ProxyFor(r.ball.ID())
			Expect(p.Position).To(Equal(r.ball.Position()))
		})

		It("reattaches the string on release", func() {
			ctl.PointerMove(r.ndc(mgl64.Vec3{1, 0.5, 0}))
			ctl.PointerUp()
			Expect(ctl.State()).To(Equal(interact.Idle))
			Expect(r.enabled()).To(BeTrue())
			Expect(r.ball.Velocity().Len()).To(BeZero())
		})

		It("leaves the string detached on cancel", func() {
			ctl.Cancel()
			Expect(ctl.State()).To(Equal(interact.Idle))
			Expect(r.enabled()).To(BeFalse())
		})

		It("drops the session when the body disappears", func() {
			ctl.PointerMove(r.ndc(mgl64.Vec3{1, 0.5, 0}))
			Expect(r.world.RemoveBody(r.ball.ID())).To(Succeed())
			ctl.ApplyPending()
			Expect(ctl.State()).To(Equal(interact.Idle))
		})

		It("survives the string being removed mid drag", func() {
			Expect(r.world.RemoveConstraint(r.tether)).To(Succeed())
			ctl.PointerUp()
			Expect(ctl.State()).To(Equal(interact.Idle))
		})
	})

	Context("with an unconstrained body", func() {
		It("returns to idle with zero velocity", func() {
			free, err := r.world.AddBody(physics.BodyOptions{
				Name: "free", Mass: 1, Shape: physics.Sphere(0.5), Position: mgl64.Vec3{-2, -1, 0},
			})
			Expect(err).NotTo(HaveOccurred())
			p := r.proxies.Add(render.NewSphere("free", 0.5, render.DefaultColor))
			Expect(r.sync.Bind(free.ID(), p)).To(Succeed())
			r.sync.Apply(r.world)

			Expect(ctl.PointerDown(r.ndc(free.Position()))).To(BeTrue())
			s, _ := ctl.Session()
			Expect(s.Detached).To(BeEmpty())
			ctl.PointerMove(r.ndc(mgl64.Vec3{-1.5, 0, 0}))
			r.world.Advance(1.0 / 60)
			r.sync.Apply(r.world)
			ctl.ApplyPending()
			ctl.PointerUp()

			_, ok := ctl.Selection()
			Expect(ok).To(BeFalse())
			Expect(free.Velocity().Len()).To(BeZero())
			Expect(free.AngularVelocity().Len()).To(BeZero())
		})
	})

	Context("with a throw scale", func() {
		It("releases with the drag velocity", func() {
			opts := interact.DefaultOptions()
			opts.ThrowScale = 1
			ctl = interact.New(r.world, r.sync, r.camera, r.proxies, opts)
			Expect(ctl.PointerDown(r.ndc(r.ball.Position()))).To(BeTrue())

			ctl.PointerMove(r.ndc(mgl64.Vec3{0, 0, 0}))
			ctl.ApplyPending()
			t0 := r.world.Time()
			r.world.Advance(1.0 / 60)
			ctl.PointerMove(r.ndc(mgl64.Vec3{1, 0, 0}))
			ctl.PointerUp()

			dt := r.world.Time() - t0
			Expect(dt).To(BeNumerically(">", 0))
			v := r.ball.Velocity()
			Expect(v.X()).To(BeNumerically("~", 1/dt, 1e-3/dt))
			Expect(v.Y()).To(BeNumerically("~", 0, 1e-3/dt))
		})
	})

	Context("with a camera-facing plane", func() {
		It("drags at the pick depth", func() {
			opts := interact.DefaultOptions()
			opts.Plane = interact.PlaneCamera
			ctl = interact.New(r.world, r.sync, r.camera, r.proxies, opts)
			Expect(ctl.PointerDown(r.ndc(r.ball.Position()))).To(BeTrue())
			s, _ := ctl.Session()
			Expect(s.PlanePoint.Z()).To(BeNumerically("~", 0.5, 1e-6))
			Expect(s.PlaneNormal.Z()).To(BeNumerically("~", 1, 1e-6))
		})
	})
})
