package scene

import (
	"sync"

	"github.com/san-kum/physlab/internal/render"
)

// Surface is the drawable area a backend renders into.
type Surface interface {
	Size() (width, height int)
}

// ResizeNotifier is implemented by surfaces that report size changes.
type ResizeNotifier interface {
	OnResize(fn func(width, height int)) (unsubscribe func())
}

// Overlay is the text drawn over the scene.
type Overlay struct {
	Title  string
	Status []string
}

// Frame is everything a backend needs to draw one image.
type Frame struct {
	Index    int
	Width    int
	Height   int
	Camera   Camera
	Lighting Lighting
	Proxies  []*render.Proxy
	Overlay  Overlay
}

// Backend draws frames onto a surface.
type Backend interface {
	Open(s Surface) error
	Resize(width, height int)
	Draw(f Frame) error
	Close() error
}

// StaticSurface is a fixed-size surface.
type StaticSurface struct {
	Width, Height int

	mu        sync.Mutex
	listeners map[int]func(int, int)
	next      int
}

func NewStaticSurface(width, height int) *StaticSurface {
	return &StaticSurface{Width: width, Height: height, listeners: make(map[int]func(int, int))}
}

func (s *StaticSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Width, s.Height
}

func (s *StaticSurface) OnResize(fn func(int, int)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// SetSize changes the size and notifies subscribers.
func (s *StaticSurface) SetSize(width, height int) {
	s.mu.Lock()
	s.Width, s.Height = width, height
	fns := make([]func(int, int), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(width, height)
	}
}

func (s *StaticSurface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// HeadlessBackend keeps the last frame instead of drawing it.
type HeadlessBackend struct {
	Opened bool
	Closed bool
	Frames int
	Last   Frame
	Width  int
	Height int
}

func (b *HeadlessBackend) Open(s Surface) error {
	b.Opened = true
	b.Width, b.Height = s.Size()
	return nil
}

func (b *HeadlessBackend) Resize(width, height int) {
	b.Width, b.Height = width, height
}

func (b *HeadlessBackend) Draw(f Frame) error {
	b.Frames++
	b.Last = f
	return nil
}

func (b *HeadlessBackend) Close() error {
	b.Closed = true
	return nil
}
