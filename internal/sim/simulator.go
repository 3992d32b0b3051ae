// Package sim runs a built demo frame by frame: input, interaction,
// stepping, render sync and the drag override, in that order.
package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/scene"
)

// PauseKey toggles stepping. Interaction keeps working while paused.
const PauseKey = "p"

type Simulator struct {
	scene  *demo.Scene
	camera *scene.Camera
	ctl    *interact.Controller
	events input.Queue
	set    *metrics.Set
	logger *log.Logger
	rctx   *scene.RenderContext

	frames     int
	passes     int
	lastPasses int
	paused     bool
	observers  []func(*Simulator)

	tuneMu sync.Mutex
	tunes  []tune
}

type tune struct {
	name  string
	value float64
}

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithMetrics replaces the default metrics.
func WithMetrics(ms ...metrics.Metric) Option {
	return func(s *Simulator) { s.set = metrics.Attach(s.scene.World, ms...) }
}

// OnFrame registers fn to run at the end of every frame.
func OnFrame(fn func(*Simulator)) Option {
	return func(s *Simulator) { s.observers = append(s.observers, fn) }
}

type cameraRef struct{ s *Simulator }

func (c cameraRef) Ray(x, y float64) dynamo.Ray { return c.s.camera.Ray(x, y) }

func New(sc *demo.Scene, opts ...Option) *Simulator {
	s := &Simulator{scene: sc, camera: &sc.Camera, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	if s.set == nil {
		s.set = metrics.Attach(sc.World, DefaultMetrics(sc)...)
	}
	extra := []interact.Option{interact.WithLogger(s.logger.WithPrefix("interact"))}
	if sc.OnMiss != nil {
		extra = append(extra, interact.WithMissHandler(sc.OnMiss))
	}
	s.ctl = interact.New(sc.World, sc.Sync, cameraRef{s}, sc.Proxies, sc.Interaction, extra...)
	return s
}

// DefaultMetrics are attached when no WithMetrics option is given.
func DefaultMetrics(sc *demo.Scene) []metrics.Metric {
	ms := []metrics.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewMaxStretch(),
		metrics.NewImpacts(0.05),
	}
	switch sc.Name {
	case "cradle":
		if b, ok := sc.Body(fmt.Sprintf("ball%d", demo.CradleBalls-1)); ok {
			ms = append(ms, metrics.NewPeakHeight("last", b.ID(), demo.CradleRestHeight))
		}
	case "drop":
		if b, ok := sc.Body("ball"); ok {
			ms = append(ms, metrics.NewPeakHeight("ball", b.ID(), 0))
		}
	}
	return ms
}

func (s *Simulator) Scene() *demo.Scene               { return s.scene }
func (s *Simulator) World() *physics.World            { return s.scene.World }
func (s *Simulator) Controller() *interact.Controller { return s.ctl }
func (s *Simulator) Metrics() *metrics.Set            { return s.set }
func (s *Simulator) Camera() *scene.Camera            { return s.camera }
func (s *Simulator) Frames() int                      { return s.frames }
func (s *Simulator) Passes() int                      { return s.passes }
func (s *Simulator) Paused() bool                     { return s.paused }

// Push queues a host event for the next frame. Safe from any goroutine.
func (s *Simulator) Push(ev input.Event) { s.events.Push(ev) }

// Tune queues a world parameter change for the next frame. Safe from any
// goroutine; invalid changes are logged and dropped.
func (s *Simulator) Tune(name string, value float64) {
	s.tuneMu.Lock()
	s.tunes = append(s.tunes, tune{name, value})
	s.tuneMu.Unlock()
}

func (s *Simulator) applyTunes() {
	s.tuneMu.Lock()
	pending := s.tunes
	s.tunes = nil
	s.tuneMu.Unlock()
	for _, t := range pending {
		if err := s.scene.World.SetParam(t.name, t.value); err != nil {
			s.logger.Warn("tune rejected", "param", t.name, "value", t.value, "err", err)
			continue
		}
		s.logger.Info("tuned", "param", t.name, "value", t.value)
	}
}

// Attach makes the render context's camera the picking camera and routes
// the status overlay to it.
func (s *Simulator) Attach(rc *scene.RenderContext) {
	s.rctx = rc
	s.camera = rc.Camera()
	rc.SetOverlay(s.Overlay())
}

// Host initialises lc on surface with this scene's render setup and starts
// the frame loop. Disposing lc cancels any drag and releases held keys.
func (s *Simulator) Host(lc *scene.Lifecycle, surface scene.Surface) error {
	if err := lc.Initialize(surface, s.scene.SceneConfig()); err != nil {
		return err
	}
	s.Attach(lc.Context())
	lc.OnDispose(s.Cancel)
	return lc.Start(s.Frame)
}

// Frame runs one display frame of delta seconds.
func (s *Simulator) Frame(delta float64) {
	s.applyTunes()
	for _, ev := range s.events.Drain() {
		s.handle(ev)
	}
	s.lastPasses = 0
	if !s.paused {
		s.lastPasses = s.scene.World.Advance(delta)
		s.passes += s.lastPasses
	}
	s.scene.Sync.Apply(s.scene.World)
	s.ctl.ApplyPending()
	s.frames++

	if s.rctx != nil {
		s.rctx.SetOverlay(s.Overlay())
	}
	for _, fn := range s.observers {
		fn(s)
	}
}

func (s *Simulator) handle(ev input.Event) {
	if ev.Pointer {
		switch ev.Action {
		case input.PointerDown:
			s.ctl.PointerDown(ev.X, ev.Y)
		case input.PointerMove:
			s.ctl.PointerMove(ev.X, ev.Y)
		case input.PointerUp:
			s.ctl.PointerUp()
		}
		return
	}
	if ev.Key == PauseKey {
		if ev.Down {
			s.paused = !s.paused
			s.logger.Info("pause", "paused", s.paused)
		}
		return
	}
	s.scene.Keys.HandleKey(ev.Key, ev.Down)
}

// Cancel abandons any drag and releases every held key.
func (s *Simulator) Cancel() {
	s.ctl.Cancel()
	s.scene.Keys.ReleaseAll()
}

func (s *Simulator) Overlay() scene.Overlay {
	w := s.scene.World
	status := []string{
		fmt.Sprintf("t %.2fs  steps %d  passes %d", w.Time(), w.StepCount(), s.lastPasses),
		fmt.Sprintf("energy %.3f J  bodies %d", metrics.TotalEnergy(w), len(w.Bodies())),
	}
	if id, ok := s.ctl.Selection(); ok {
		status = append(status, fmt.Sprintf("%s body %d", s.ctl.State(), id))
	}
	if d := w.Diagnostics(); d.Warnings > 0 {
		status = append(status, fmt.Sprintf("warnings %d", d.Warnings))
	}
	if s.paused {
		status = append(status, "paused")
	}
	status = append(status, s.scene.Help...)
	return scene.Overlay{Title: s.scene.Title, Status: status}
}

// Snapshot captures every body's state.
func (s *Simulator) Snapshot() Snapshot {
	w := s.scene.World
	bodies := w.Bodies()
	snap := Snapshot{
		Time:   w.Time(),
		Frame:  s.frames,
		Energy: metrics.TotalEnergy(w),
		Bodies: make([]BodyState, 0, len(bodies)),
	}
	for _, b := range bodies {
		name := b.Name()
		if name == "" {
			name = fmt.Sprintf("body%d", b.ID())
		}
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:          b.ID(),
			Name:        name,
			Position:    b.Position(),
			Velocity:    b.Velocity(),
			Orientation: b.Orientation(),
			Sleeping:    b.SleepState() == physics.Sleeping,
		})
	}
	return snap
}

// Run advances the scene on a virtual clock for cfg.Duration, recording
// snapshots. It stops early with ctx.Err() when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	frames := int(math.Round(cfg.Duration / cfg.FrameDt))
	every := cfg.RecordEvery
	if every <= 0 {
		every = 1
	}
	script := append([]ScriptedEvent(nil), cfg.Script...)
	sort.SliceStable(script, func(i, j int) bool { return script[i].At < script[j].At })

	result := &Result{
		Demo:      s.scene.Name,
		Snapshots: make([]Snapshot, 0, frames/every+2),
	}
	s.set.Reset()
	startSteps := s.scene.World.StepCount()
	result.Snapshots = append(result.Snapshots, s.Snapshot())

	clock := 0.0
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, startSteps)
			return result, ctx.Err()
		default:
		}

		for len(script) > 0 && script[0].At <= clock+1e-12 {
			s.Push(script[0].Event)
			script = script[1:]
		}
		s.Frame(cfg.FrameDt)
		clock += cfg.FrameDt
		result.Frames++

		if result.Frames%every == 0 || i == frames-1 {
			result.Snapshots = append(result.Snapshots, s.Snapshot())
		}
	}
	s.finish(result, startSteps)
	s.logger.Info("run complete",
		"demo", result.Demo,
		"frames", result.Frames,
		"steps", result.StepsTaken,
		"drift", result.EnergyDrift,
	)
	return result, nil
}

func (s *Simulator) finish(r *Result, startSteps int) {
	r.StepsTaken = s.scene.World.StepCount() - startSteps
	r.Metrics = s.set.Values()
	r.Diagnostics = s.scene.World.Diagnostics()
	if n := len(r.Snapshots); n > 1 {
		first, last := r.Snapshots[0].Energy, r.Snapshots[n-1].Energy
		if first != 0 {
			r.EnergyDrift = math.Abs(last-first) / math.Abs(first)
		}
	}
}

func validateConfig(cfg Config) error {
	if cfg.FrameDt <= 0 {
		return dynamo.Invalid("frame dt", cfg.FrameDt, "must be positive")
	}
	if cfg.Duration <= 0 {
		return dynamo.Invalid("duration", cfg.Duration, "must be positive")
	}
	return nil
}
