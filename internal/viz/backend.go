package viz

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/san-kum/physlab/internal/scene"
)

// Terminal is a scene.Backend that rasterises frames onto a braille canvas.
// The surface size is in canvas sub-pixels.
type Terminal struct {
	mu      sync.Mutex
	canvas  *Canvas
	overlay scene.Overlay
	frames  int
	open    bool
}

func NewTerminal() *Terminal { return &Terminal{} }

func (t *Terminal) Open(s scene.Surface) error {
	w, h := s.Size()
	if w < 2 || h < 4 {
		return fmt.Errorf("terminal surface %dx%d smaller than one cell", w, h)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canvas = NewCanvas(w/2, h/4)
	t.open = true
	return nil
}

func (t *Terminal) Resize(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width < 2 || height < 4 {
		return
	}
	t.canvas = NewCanvas(width/2, height/4)
}

func (t *Terminal) Draw(f scene.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.open {
		return fmt.Errorf("terminal not open")
	}
	Rasterize(t.canvas, f)
	t.overlay = f.Overlay
	t.frames++
	return nil
}

func (t *Terminal) Close() error {
	t.mu.Lock()
	t.open = false
	t.mu.Unlock()
	return nil
}

// Snapshot returns the last drawn canvas text and overlay.
func (t *Terminal) Snapshot() (string, scene.Overlay) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canvas == nil {
		return "", t.overlay
	}
	return t.canvas.String(), t.overlay
}

// Canvas returns a copy of the current canvas.
func (t *Terminal) Canvas() *Canvas {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canvas == nil {
		return nil
	}
	c := NewCanvas(t.canvas.Width, t.canvas.Height)
	for i := range t.canvas.Grid {
		copy(c.Grid[i], t.canvas.Grid[i])
	}
	return c
}

func (t *Terminal) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// teaScheduler hands pending frame requests to the Bubble Tea tick loop.
type teaScheduler struct {
	mu      sync.Mutex
	pending map[int]func(time.Time)
	next    int
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{pending: make(map[int]func(time.Time))}
}

func (s *teaScheduler) Request(fn func(time.Time)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.pending[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}
}

// fire runs every request pending at call time.
func (s *teaScheduler) fire(now time.Time) int {
	s.mu.Lock()
	ids := make([]int, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(time.Time), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.pending[id])
		delete(s.pending, id)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}
