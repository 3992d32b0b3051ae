package scene

import "github.com/san-kum/physlab/internal/render"

type Config struct {
	Camera   Camera
	Lighting Lighting
	Title    string
	// Proxies is drawn when set; otherwise the context starts empty.
	Proxies *render.Registry
}

func DefaultConfig() Config {
	return Config{Camera: DefaultCamera(), Lighting: DefaultLighting()}
}

// RenderContext owns the camera, the lights and the proxy list, and hands
// frames to a backend.
type RenderContext struct {
	backend  Backend
	camera   Camera
	lighting Lighting
	proxies  *render.Registry
	overlay  Overlay
	width    int
	height   int
	frames   int
}

func NewRenderContext(backend Backend, cfg Config) *RenderContext {
	proxies := cfg.Proxies
	if proxies == nil {
		proxies = render.NewRegistry()
	}
	return &RenderContext{
		backend:  backend,
		camera:   cfg.Camera,
		lighting: cfg.Lighting,
		proxies:  proxies,
		overlay:  Overlay{Title: cfg.Title},
	}
}

func (r *RenderContext) Camera() *Camera           { return &r.camera }
func (r *RenderContext) Lighting() *Lighting       { return &r.lighting }
func (r *RenderContext) Proxies() *render.Registry { return r.proxies }
func (r *RenderContext) Size() (int, int)          { return r.width, r.height }
func (r *RenderContext) Frames() int               { return r.frames }
func (r *RenderContext) SetOverlay(o Overlay)      { r.overlay = o }
func (r *RenderContext) Overlay() Overlay          { return r.overlay }

func (r *RenderContext) resize(width, height int) {
	r.width, r.height = width, height
	r.camera.SetAspect(width, height)
	r.backend.Resize(width, height)
}

// Render draws the current proxies.
func (r *RenderContext) Render() error {
	r.frames++
	return r.backend.Draw(Frame{
		Index:    r.frames,
		Width:    r.width,
		Height:   r.height,
		Camera:   r.camera,
		Lighting: r.lighting,
		Proxies:  r.proxies.All(),
		Overlay:  r.overlay,
	})
}
