package scene_test

import (
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

type failingBackend struct{ scene.HeadlessBackend }

func (failingBackend) Open(scene.Surface) error { return errors.New("no display") }

var _ = Describe("Lifecycle", func() {
	var (
		backend *scene.HeadlessBackend
		sched   *scene.ManualScheduler
		surface *scene.StaticSurface
		lc      *scene.Lifecycle
	)

	BeforeEach(func() {
		backend = &scene.HeadlessBackend{}
		sched = scene.NewManualScheduler(time.Unix(0, 0), 16*time.Millisecond)
		surface = scene.NewStaticSurface(800, 600)
		lc = scene.NewLifecycle(backend, sched)
	})

	Describe("Initialize", func() {
		It("opens the backend and sets the camera aspect", func() {
			Expect(lc.Initialize(surface, scene.DefaultConfig())).To(Succeed())
			Expect(backend.Opened).To(BeTrue())
			Expect(lc.Context().Camera().Aspect).To(BeNumerically("~", 800.0/600.0, 1e-12))
			Expect(surface.Subscribers()).To(Equal(1))
		})

		It("reports a missing surface", func() {
			err := lc.Initialize(nil, scene.DefaultConfig())
			Expect(errors.Is(err, dynamo.ErrSurfaceUnavailable)).To(BeTrue())
		})

		It("reports an empty surface", func() {
			err := lc.Initialize(scene.NewStaticSurface(0, 600), scene.DefaultConfig())
			Expect(errors.Is(err, dynamo.ErrSurfaceUnavailable)).To(BeTrue())
			Expect(backend.Opened).To(BeFalse())
		})

		It("wraps backend failures", func() {
			lc = scene.NewLifecycle(&failingBackend{}, sched)
			err := lc.Initialize(surface, scene.DefaultConfig())
			Expect(errors.Is(err, dynamo.ErrSurfaceUnavailable)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("no display"))
		})
	})

	Describe("frames", func() {
		BeforeEach(func() {
			Expect(lc.Initialize(surface, scene.DefaultConfig())).To(Succeed())
		})

		It("needs Initialize before Start", func() {
			other := scene.NewLifecycle(&scene.HeadlessBackend{}, sched)
			Expect(other.Start(nil)).NotTo(Succeed())
		})

		It("runs the callback then renders, once per scheduled frame", func() {
			var deltas []float64
			Expect(lc.Start(func(dt float64) {
				deltas = append(deltas, dt)
				Expect(backend.Frames).To(Equal(len(deltas) - 1))
			})).To(Succeed())

			for i := 0; i < 3; i++ {
				Expect(sched.Fire()).To(Equal(1))
			}
			Expect(backend.Frames).To(Equal(3))
			Expect(deltas).To(HaveLen(3))
			Expect(deltas[0]).To(BeZero())
			Expect(deltas[1]).To(BeNumerically("~", 0.016, 1e-9))
			Expect(sched.Pending()).To(Equal(1))
		})

		It("passes the proxies to the backend", func() {
			lc.Context().Proxies().Add(render.NewSphere("ball", 0.5, render.DefaultColor))
			Expect(lc.Start(nil)).To(Succeed())
			sched.Fire()
			Expect(backend.Last.Proxies).To(HaveLen(1))
			Expect(backend.Last.Width).To(Equal(800))
		})

		It("follows surface resizes", func() {
			surface.SetSize(400, 400)
			Expect(backend.Width).To(Equal(400))
			Expect(lc.Context().Camera().Aspect).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("ignores degenerate resizes", func() {
			lc.Resize(0, 100)
			w, h := lc.Context().Size()
			Expect([]int{w, h}).To(Equal([]int{800, 600}))
		})
	})

	Describe("Dispose", func() {
		BeforeEach(func() {
			Expect(lc.Initialize(surface, scene.DefaultConfig())).To(Succeed())
		})

		It("cancels the pending frame and releases everything once", func() {
			hooks := 0
			lc.OnDispose(func() { hooks++ })
			Expect(lc.Start(nil)).To(Succeed())
			Expect(sched.Pending()).To(Equal(1))

			Expect(lc.Dispose()).To(Succeed())
			Expect(lc.Dispose()).To(Succeed())

			Expect(sched.Pending()).To(BeZero())
			Expect(surface.Subscribers()).To(BeZero())
			Expect(backend.Closed).To(BeTrue())
			Expect(hooks).To(Equal(1))
		})

		It("lets the frame in progress finish without scheduling another", func() {
			frames := 0
			Expect(lc.Start(func(float64) {
				frames++
				Expect(lc.Dispose()).To(Succeed())
			})).To(Succeed())
			sched.Fire()
			Expect(frames).To(Equal(1))
			Expect(sched.Pending()).To(BeZero())
			Expect(sched.Fire()).To(BeZero())
		})

		It("holds a resize requested mid-frame until the callback returns", func() {
			Expect(lc.Start(func(float64) {
				lc.Resize(400, 400)
				Expect(lc.Context().Camera().Aspect).To(BeNumerically("~", 800.0/600.0, 1e-12))
			})).To(Succeed())
			sched.Fire()
			Expect(lc.Context().Camera().Aspect).To(BeNumerically("~", 1.0, 1e-12))
			Expect(backend.Width).To(Equal(400))
		})

		It("runs hooks after a frame in progress on another goroutine", func() {
			ticker := scene.NewTickerScheduler(200)
			defer ticker.Stop()
			tb := &scene.HeadlessBackend{}
			live := scene.NewLifecycle(tb, ticker)
			Expect(live.Initialize(scene.NewStaticSurface(320, 240), scene.DefaultConfig())).To(Succeed())

			var (
				mu    sync.Mutex
				order []string
			)
			record := func(s string) {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, s)
			}
			live.OnDispose(func() { record("hook") })

			entered := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once
			Expect(live.Start(func(float64) {
				first := false
				once.Do(func() { first = true })
				if !first {
					return
				}
				close(entered)
				<-release
				record("frame end")
			})).To(Succeed())

			Eventually(entered).Should(BeClosed())
			Expect(live.Dispose()).To(Succeed())
			Consistently(live.Done(), 30*time.Millisecond).ShouldNot(BeClosed())
			close(release)

			Eventually(live.Done()).Should(BeClosed())
			mu.Lock()
			defer mu.Unlock()
			Expect(order).To(Equal([]string{"frame end", "hook"}))
			Expect(tb.Closed).To(BeTrue())
			Expect(tb.Frames).To(BeZero())
		})

		It("ignores ticks and starts afterwards", func() {
			Expect(lc.Dispose()).To(Succeed())
			lc.Tick(time.Now())
			Expect(backend.Frames).To(BeZero())
			Expect(errors.Is(lc.Start(nil), dynamo.ErrDisposed)).To(BeTrue())
		})
	})
})
