package demo

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
)

const (
	DropHeight      = 5.0
	DropRadius      = 0.5
	DropRestitution = 0.8
)

func DropConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl64.Vec3{0, -9.82, 0}
	cfg.FixedTimestep = 1.0 / 120
	cfg.MaxSubSteps = 20
	return cfg
}

func buildDrop(opts Options) (*Scene, error) {
	s, err := newScene("drop", "Ball Drop", DropConfig(), opts)
	if err != nil {
		return nil, err
	}
	reg := opts.regime()
	if err := s.World.AddContactMaterial(physics.ContactMaterial{
		A:           "ground",
		B:           "ball",
		Friction:    0.3,
		Restitution: DropRestitution,
		Stiffness:   reg.Stiffness,
		Relaxation:  reg.Relaxation,
	}); err != nil {
		return nil, err
	}
	s.Camera.Position = mgl64.Vec3{0, 3, 12}
	s.Camera.Target = mgl64.Vec3{0, 2.5, 0}
	s.Interaction.Plane = interact.PlaneFixed
	s.Interaction.ThrowScale = opts.ThrowScale

	if _, err := s.add(physics.BodyOptions{Name: "ground", Shape: physics.Plane(), Material: physics.NewMaterial("ground")},
		render.NewPlane("ground", 20, render.GroundColor)); err != nil {
		return nil, err
	}
	_, err = s.add(physics.BodyOptions{
		Name:     "ball",
		Mass:     1,
		Shape:    physics.Sphere(DropRadius),
		Material: physics.NewMaterial("ball"),
		Position: mgl64.Vec3{0, DropHeight, 0},
	}, render.NewSphere("ball", DropRadius, render.PaletteColor(1)))
	return s, err
}
