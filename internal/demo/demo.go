// Package demo builds the runnable scenes: a world, its render proxies, the
// join between them and the input wiring each scene expects.
package demo

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/san-kum/physlab/internal/actuation"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

// Regime selects contact stiffness for the scenes that are sensitive to it.
type Regime struct {
	Name       string
	Stiffness  float64
	Relaxation float64
}

var (
	Stiff = Regime{Name: "stiff", Stiffness: 1e10, Relaxation: 3}
	Soft  = Regime{Name: "soft", Stiffness: 1e7, Relaxation: 3}
)

func RegimeByName(name string) (Regime, error) {
	switch name {
	case "", Stiff.Name:
		return Stiff, nil
	case Soft.Name:
		return Soft, nil
	default:
		return Regime{}, dynamo.Invalid("regime", name, "want stiff or soft")
	}
}

type Options struct {
	// Regime is used by the cradle and drop scenes. Zero means Stiff.
	Regime     Regime
	Seed       int64
	ThrowScale float64
	// Tune edits the scene's world config before the world is built.
	Tune   func(*physics.Config)
	Logger *log.Logger
}

func (o Options) regime() Regime {
	if o.Regime.Stiffness == 0 {
		return Stiff
	}
	return o.Regime
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// Scene is a built demo.
type Scene struct {
	Name        string
	Title       string
	Help        []string
	World       *physics.World
	Sync        *render.Sync
	Proxies     *render.Registry
	Camera      scene.Camera
	Lighting    scene.Lighting
	Interaction interact.Options
	Keys        *actuation.Map
	// OnMiss handles pointer downs that hit nothing.
	OnMiss func(ray dynamo.Ray)
	// Bodies names the bodies tests and hosts look up.
	Bodies map[string]physics.BodyID

	// Sandbox is set for the sandbox scene only.
	Sandbox *Sandbox
}

func newScene(name, title string, cfg physics.Config, opts Options) (*Scene, error) {
	if opts.Tune != nil {
		opts.Tune(&cfg)
	}
	w, err := physics.NewWorld(cfg, physics.WithLogger(opts.logger().WithPrefix("physics")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Scene{
		Name:        name,
		Title:       title,
		World:       w,
		Sync:        render.NewSync(),
		Proxies:     render.NewRegistry(),
		Camera:      scene.DefaultCamera(),
		Lighting:    scene.DefaultLighting(),
		Interaction: interact.DefaultOptions(),
		Keys:        actuation.DefaultBindings(),
		Bodies:      make(map[string]physics.BodyID),
	}, nil
}

// add creates a body and, when p is non-nil, registers and binds its proxy.
func (s *Scene) add(o physics.BodyOptions, p *render.Proxy) (*physics.Body, error) {
	b, err := s.World.AddBody(o)
	if err != nil {
		return nil, fmt.Errorf("%s: body %q: %w", s.Name, o.Name, err)
	}
	if o.Name != "" {
		s.Bodies[o.Name] = b.ID()
	}
	if p == nil {
		return b, nil
	}
	s.Proxies.Add(p)
	if err := s.Sync.Bind(b.ID(), p); err != nil {
		return nil, err
	}
	return b, nil
}

// decor adds a proxy no body drives.
func (s *Scene) decor(p *render.Proxy) *render.Proxy {
	p.Pickable = false
	return s.Proxies.Add(p)
}

// SceneConfig is the render setup for this scene.
func (s *Scene) SceneConfig() scene.Config {
	return scene.Config{Camera: s.Camera, Lighting: s.Lighting, Title: s.Title, Proxies: s.Proxies}
}

// Body looks up a named body.
func (s *Scene) Body(name string) (*physics.Body, bool) {
	id, ok := s.Bodies[name]
	if !ok {
		return nil, false
	}
	return s.World.Body(id)
}

type Builder func(opts Options) (*Scene, error)

type entry struct {
	build       Builder
	description string
}

var registry = map[string]entry{
	"cradle":  {buildCradle, "Newton's cradle: five balls on distance constraints"},
	"vehicle": {buildVehicle, "chassis on four hinged wheels, WASD to drive"},
	"sandbox": {buildSandbox, "drop, drag and throw balls and boxes"},
	"drop":    {buildDrop, "a single ball bouncing on a plane"},
}

// Build constructs the named scene with every proxy synced to its body.
func Build(name string, opts Options) (*Scene, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown demo: %s", name)
	}
	s, err := e.build(opts)
	if err != nil {
		return nil, err
	}
	s.Sync.Apply(s.World)
	opts.logger().Debug("demo built", "demo", name, "bodies", len(s.World.Bodies()), "proxies", s.Proxies.Len())
	return s, nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func Describe(name string) string {
	return registry[name].description
}
