package scene

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physlab/internal/dynamo"
)

// FrameFunc runs once per displayed frame with the seconds elapsed since the
// previous one (zero on the first frame).
type FrameFunc func(delta float64)

// Lifecycle drives a RenderContext: it opens the backend, schedules frames
// and tears everything down exactly once.
type Lifecycle struct {
	backend Backend
	sched   Scheduler
	logger  *log.Logger

	mu          sync.Mutex
	ctx         *RenderContext
	cb          FrameFunc
	cancel      func()
	unsubscribe func()
	hooks       []func()
	disposed    bool
	running     bool
	done        chan struct{}

	// inFrame is set while the frame callback runs. Dispose and Resize
	// arriving then are applied by Tick once the callback returns.
	inFrame bool
	resized *[2]int

	last    time.Time
	ticked  bool
	lastErr error
}

type Option func(*Lifecycle)

func WithLogger(l *log.Logger) Option {
	return func(lc *Lifecycle) { lc.logger = l }
}

func NewLifecycle(backend Backend, sched Scheduler, opts ...Option) *Lifecycle {
	lc := &Lifecycle{backend: backend, sched: sched, logger: log.New(io.Discard), done: make(chan struct{})}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Initialize opens the backend on s and builds the render context. A nil or
// zero-sized surface, or a backend that fails to open, yields an error
// wrapping dynamo.ErrSurfaceUnavailable.
func (l *Lifecycle) Initialize(s Surface, cfg Config) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return dynamo.ErrDisposed
	}
	if l.ctx != nil {
		return fmt.Errorf("scene: already initialized")
	}
	if s == nil {
		return fmt.Errorf("scene: nil surface: %w", dynamo.ErrSurfaceUnavailable)
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("scene: surface is %dx%d: %w", w, h, dynamo.ErrSurfaceUnavailable)
	}
	if err := l.backend.Open(s); err != nil {
		return fmt.Errorf("scene: open backend: %w: %w", dynamo.ErrSurfaceUnavailable, err)
	}
	l.ctx = NewRenderContext(l.backend, cfg)
	l.ctx.resize(w, h)
	if rn, ok := s.(ResizeNotifier); ok {
		l.unsubscribe = rn.OnResize(l.Resize)
	}
	l.logger.Debug("scene initialized", "width", w, "height", h)
	return nil
}

// Context is nil until Initialize succeeds.
func (l *Lifecycle) Context() *RenderContext {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx
}

// Start schedules the first frame. cb may be nil for a render-only loop.
func (l *Lifecycle) Start(cb FrameFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.disposed:
		return dynamo.ErrDisposed
	case l.ctx == nil:
		return fmt.Errorf("scene: start before initialize")
	case l.running:
		return nil
	}
	l.cb = cb
	l.running = true
	l.cancel = l.sched.Request(l.Tick)
	return nil
}

// Tick runs one frame: the callback, then a render, then the next request.
// It is a no-op after Dispose.
func (l *Lifecycle) Tick(now time.Time) {
	l.mu.Lock()
	if l.disposed || l.ctx == nil {
		l.mu.Unlock()
		return
	}
	cb, ctx := l.cb, l.ctx
	delta := 0.0
	if l.ticked {
		delta = now.Sub(l.last).Seconds()
	}
	l.last, l.ticked = now, true
	l.inFrame = true
	l.mu.Unlock()

	if cb != nil {
		cb(delta)
	}

	l.mu.Lock()
	l.inFrame = false
	if l.disposed {
		l.mu.Unlock()
		l.teardown()
		return
	}
	if r := l.resized; r != nil {
		l.resized = nil
		ctx.resize(r[0], r[1])
	}
	if err := ctx.Render(); err != nil {
		l.lastErr = err
		l.logger.Error("render failed", "frame", ctx.Frames(), "err", err)
	}
	if l.running {
		l.cancel = l.sched.Request(l.Tick)
	}
	l.mu.Unlock()
}

// Resize updates the camera aspect and the backend. Non-positive sizes are
// ignored. During a frame the change is held until the callback returns.
func (l *Lifecycle) Resize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed || l.ctx == nil || width <= 0 || height <= 0 {
		return
	}
	if l.inFrame {
		l.resized = &[2]int{width, height}
		return
	}
	l.ctx.resize(width, height)
}

// OnDispose registers fn to run during Dispose.
func (l *Lifecycle) OnDispose(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

func (l *Lifecycle) Disposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

func (l *Lifecycle) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Dispose cancels the pending frame, unsubscribes from the surface, runs the
// dispose hooks and closes the backend. When a frame is in progress the
// teardown runs on the frame's goroutine after its callback returns, so
// hooks never overlap a callback; Done reports completion. Calling it again
// does nothing.
func (l *Lifecycle) Dispose() error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return nil
	}
	l.disposed = true
	l.running = false
	deferred := l.inFrame
	l.mu.Unlock()

	if deferred {
		l.logger.Debug("dispose deferred to end of frame")
		return nil
	}
	return l.teardown()
}

// Done is closed once Dispose has finished tearing down.
func (l *Lifecycle) Done() <-chan struct{} { return l.done }

func (l *Lifecycle) teardown() error {
	l.mu.Lock()
	cancel, unsubscribe, hooks := l.cancel, l.unsubscribe, l.hooks
	l.cancel, l.unsubscribe, l.hooks = nil, nil, nil
	opened := l.ctx != nil
	l.mu.Unlock()
	defer close(l.done)

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	for _, fn := range hooks {
		fn()
	}
	if !opened {
		return nil
	}
	l.logger.Debug("scene disposed")
	if err := l.backend.Close(); err != nil {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		return err
	}
	return nil
}
