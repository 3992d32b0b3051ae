package gui

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/physlab/internal/audio"
	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
)

type Options struct {
	Width  int
	Height int
	FPS    int
	Audio  bool
	Logger *log.Logger
}

func DefaultOptions() Options {
	return Options{Width: 1280, Height: 720, FPS: 60}
}

// loopScheduler queues frame requests until the window loop fires them.
type loopScheduler struct {
	mu      sync.Mutex
	pending map[uint64]func(time.Time)
	next    uint64
}

func newLoopScheduler() *loopScheduler {
	return &loopScheduler{pending: make(map[uint64]func(time.Time))}
}

func (s *loopScheduler) Request(fn func(time.Time)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.pending[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// fire runs the requests pending at call time in request order.
func (s *loopScheduler) fire(now time.Time) int {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(time.Time), len(ids))
	for i, id := range ids {
		fns[i] = s.pending[id]
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// Run opens a window for s and blocks until it is closed or q is pressed.
func Run(s *sim.Simulator, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}

	win := NewWindow("physlab - "+s.Scene().Title, opts.FPS)
	sched := newLoopScheduler()
	lc := scene.NewLifecycle(win, sched, scene.WithLogger(logger.WithPrefix("scene")))
	if err := s.Host(lc, scene.NewStaticSurface(opts.Width, opts.Height)); err != nil {
		return err
	}
	defer lc.Dispose()

	if opts.Audio {
		synth := audio.NewSynth(audio.SampleRate)
		s.World().AddObserver(synth)
		player, err := audio.Open(synth, logger.WithPrefix("audio"))
		if err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer player.Close()
		}
	}

	p := &poller{sim: s, lc: lc}
	for !rl.WindowShouldClose() && !lc.Disposed() {
		if rl.IsWindowResized() {
			lc.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
		}
		p.poll()
		sched.fire(time.Now())
	}
	logger.Info("window closed", "frames", win.Frames())
	return nil
}

// poller turns raylib input state into simulator events.
type poller struct {
	sim      *sim.Simulator
	lc       *scene.Lifecycle
	dragging bool
}

func (p *poller) poll() {
	if rl.IsKeyPressed(rl.KeyQ) {
		p.lc.Dispose()
		return
	}
	for _, k := range keyTable {
		if rl.IsKeyPressed(k.code) {
			p.sim.Push(input.Key(k.name, true))
		}
		if rl.IsKeyReleased(k.code) {
			p.sim.Push(input.Key(k.name, false))
		}
	}

	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	mouse := rl.GetMousePosition()
	x, y := scene.PixelToNDC(float64(mouse.X), float64(mouse.Y), w, h)
	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		p.dragging = true
		p.sim.Push(input.Pointer(input.PointerDown, x, y))
	case rl.IsMouseButtonReleased(rl.MouseLeftButton):
		p.dragging = false
		p.sim.Push(input.Pointer(input.PointerUp, x, y))
	case p.dragging:
		if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
			p.sim.Push(input.Pointer(input.PointerMove, x, y))
		}
	}

	cam := p.sim.Camera()
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		cam.Orbit(-float64(d.X)*0.005, float64(d.Y)*0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.Zoom(1 - 0.1*float64(wheel))
	}
}
