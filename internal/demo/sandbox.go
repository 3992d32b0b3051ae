package demo

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/actuation"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
)

type SpawnKind int

const (
	SpawnBall SpawnKind = iota
	SpawnBox
)

func (k SpawnKind) String() string {
	if k == SpawnBox {
		return "box"
	}
	return "ball"
}

const (
	SandboxGroundHeight = -2.0
	spawnDistance       = 10.0
	spawnLift           = 5.0
)

var (
	groundMat = physics.Material{Name: "ground", Friction: 0.3, Restitution: 0.6}
	ballMat   = physics.Material{Name: "ball", Friction: 0.3, Restitution: 0.7}
	boxMat    = physics.Material{Name: "box", Friction: 0.4, Restitution: 0.5}
	playerMat = physics.Material{Name: "player", Friction: 0.1, Restitution: 0.2}
)

func SandboxConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl64.Vec3{0, -9.81, 0}
	cfg.AllowSleep = false
	cfg.SolverIterations = 10
	return cfg
}

// Sandbox owns the objects spawned at run time.
type Sandbox struct {
	scene   *Scene
	rng     *rand.Rand
	spawned []physics.BodyID
	count   int
}

func buildSandbox(opts Options) (*Scene, error) {
	s, err := newScene("sandbox", "Gravity Sandbox", SandboxConfig(), opts)
	if err != nil {
		return nil, err
	}
	s.Help = []string{"click empty space to spawn", "drag to throw", "wasd move, space jump", "c spawn, r reset"}
	s.Camera.FOV = 75
	s.Camera.Position = mgl64.Vec3{10, 10, 10}
	s.Interaction.Plane = interact.PlaneCamera
	s.Interaction.ThrowScale = opts.ThrowScale

	if _, err := s.add(physics.BodyOptions{
		Name:     "ground",
		Shape:    physics.Plane(),
		Material: groundMat,
		Position: mgl64.Vec3{0, SandboxGroundHeight, 0},
	}, render.NewPlane("ground", 50, render.GroundColor)); err != nil {
		return nil, err
	}
	for i, p := range []mgl64.Vec3{{5, 0, 5}, {-5, 0, -5}} {
		name := fmt.Sprintf("well%d", i)
		if _, err := s.add(physics.BodyOptions{Name: name, Shape: physics.Sphere(1), Position: p},
			render.NewSphere(name, 1, render.HighlightColor)); err != nil {
			return nil, err
		}
	}
	// static spheres are not draggable
	for _, b := range s.Sync.Bindings() {
		if body, ok := s.World.Body(b.Body); ok && body.IsStatic() {
			b.Proxy.Pickable = false
		}
	}

	player, err := s.add(physics.BodyOptions{
		Name:     "player",
		Mass:     1,
		Shape:    physics.Box(mgl64.Vec3{0.25, 0.9, 0.25}),
		Material: playerMat,
		Position: mgl64.Vec3{0, 1, 0},
	}, render.NewBox("player", mgl64.Vec3{0.25, 0.9, 0.25}, render.PaletteColor(4)))
	if err != nil {
		return nil, err
	}
	s.Keys.Attach(s.World, &actuation.ImpulseActuator{
		World:       s.World,
		Body:        player.ID(),
		Impulse:     0.5,
		Jump:        5,
		BoostFactor: 2,
	})

	sb := &Sandbox{scene: s, rng: rand.New(rand.NewSource(opts.Seed))}
	s.Sandbox = sb
	for _, o := range []struct {
		kind SpawnKind
		pos  mgl64.Vec3
	}{
		{SpawnBox, mgl64.Vec3{3, 2, 3}},
		{SpawnBox, mgl64.Vec3{-3, 4, -3}},
		{SpawnBall, mgl64.Vec3{0, 10, 0}},
	} {
		if _, err := sb.place(o.kind, o.pos, ""); err != nil {
			return nil, err
		}
	}

	s.Keys.Bind(actuation.Reset, "r")
	s.Keys.Bind(actuation.Spawn, "c")
	s.Keys.OnAction(func(a actuation.Action, down bool) {
		if !down {
			return
		}
		switch a {
		case actuation.Reset:
			sb.Reset()
		case actuation.Spawn:
			if _, err := sb.SpawnRandom(); err != nil {
				opts.logger().Error("spawn failed", "err", err)
			}
		}
	})
	s.OnMiss = func(ray dynamo.Ray) {
		if _, err := sb.SpawnAlongRay(ray); err != nil {
			opts.logger().Error("spawn failed", "err", err)
		}
	}
	return s, nil
}

func (sb *Sandbox) place(kind SpawnKind, pos mgl64.Vec3, prefix string) (*physics.Body, error) {
	sb.count++
	name := fmt.Sprintf("%s%s%d", prefix, kind, sb.count)
	color := render.PaletteColor(sb.count)
	if kind == SpawnBox {
		half := mgl64.Vec3{0.5, 0.5, 0.5}
		return sb.scene.add(physics.BodyOptions{
			Name: name, Mass: 2, Shape: physics.Box(half), Material: boxMat, Position: pos,
		}, render.NewBox(name, half, color))
	}
	return sb.scene.add(physics.BodyOptions{
		Name: name, Mass: 1, Shape: physics.Sphere(0.5), Material: ballMat, Position: pos,
	}, render.NewSphere(name, 0.5, color))
}

// Spawn adds an object that Reset removes again.
func (sb *Sandbox) Spawn(kind SpawnKind, pos mgl64.Vec3) (*physics.Body, error) {
	b, err := sb.place(kind, pos, "spawned-")
	if err != nil {
		return nil, err
	}
	sb.spawned = append(sb.spawned, b.ID())
	sb.scene.Sync.SyncBody(sb.scene.World, b.ID())
	return b, nil
}

func (sb *Sandbox) randomKind() SpawnKind {
	if sb.rng.Float64() > 0.5 {
		return SpawnBall
	}
	return SpawnBox
}

// SpawnAlongRay drops a random object above the point ten units along ray.
func (sb *Sandbox) SpawnAlongRay(ray dynamo.Ray) (*physics.Body, error) {
	return sb.Spawn(sb.randomKind(), ray.At(spawnDistance).Add(mgl64.Vec3{0, spawnLift, 0}))
}

// SpawnRandom drops a random object somewhere above the ground.
func (sb *Sandbox) SpawnRandom() (*physics.Body, error) {
	kind := sb.randomKind()
	pos := mgl64.Vec3{
		(sb.rng.Float64() - 0.5) * 10,
		sb.rng.Float64()*10 + 5,
		(sb.rng.Float64() - 0.5) * 10,
	}
	return sb.Spawn(kind, pos)
}

// Reset removes every spawned object.
func (sb *Sandbox) Reset() {
	s := sb.scene
	for _, id := range sb.spawned {
		if p, ok := s.Sync.ProxyFor(id); ok {
			s.Proxies.Remove(p)
		}
		s.Sync.Unbind(id)
		_ = s.World.RemoveBody(id)
		for name, bid := range s.Bodies {
			if bid == id {
				delete(s.Bodies, name)
			}
		}
	}
	sb.spawned = nil
}

func (sb *Sandbox) Spawned() []physics.BodyID {
	return append([]physics.BodyID(nil), sb.spawned...)
}
