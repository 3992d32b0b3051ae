package demo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/actuation"
	"github.com/san-kum/physlab/internal/interact"
	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
)

const (
	VehicleMaxForce = 10.0
	VehicleMaxSteer = math.Pi / 8
	vehicleAxle     = 5.0
	wheelRadius     = 1.0
)

// VehicleWheelPositions are chassis-local; wheels 0 and 1 are driven and
// steered.
var VehicleWheelPositions = []mgl64.Vec3{
	{-2, 0, vehicleAxle / 2},
	{-2, 0, -vehicleAxle / 2},
	{2, 0, -vehicleAxle / 2},
	{2, 0, vehicleAxle / 2},
}

func VehicleConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl64.Vec3{0, -9.8, 0}
	return cfg
}

func buildVehicle(opts Options) (*Scene, error) {
	s, err := newScene("vehicle", "Vehicle", VehicleConfig(), opts)
	if err != nil {
		return nil, err
	}
	s.Help = []string{"w/s drive", "a/d steer", "shift boost"}
	s.Interaction.Plane = interact.PlaneCamera
	s.Camera.Position = mgl64.Vec3{0, 8, 20}

	if _, err := s.add(physics.BodyOptions{Name: "ground", Shape: physics.Plane()},
		render.NewPlane("ground", 100, render.GroundColor)); err != nil {
		return nil, err
	}
	chassisPos := mgl64.Vec3{0, 6, 0}
	chassis, err := s.add(physics.BodyOptions{
		Name:           "chassis",
		Mass:           5,
		Shape:          physics.Box(mgl64.Vec3{4, 0.5, 2}),
		Position:       chassisPos,
		LinearDamping:  physics.DefaultLinearDamping,
		AngularDamping: physics.DefaultAngularDamping,
	}, render.NewBox("chassis", mgl64.Vec3{4, 0.5, 2}, render.PaletteColor(0)))
	if err != nil {
		return nil, err
	}

	act := &actuation.VehicleActuator{
		World:       s.World,
		Driven:      []int{0, 1},
		Steered:     []int{0, 1},
		MaxForce:    VehicleMaxForce,
		MaxSteer:    VehicleMaxSteer,
		BoostFactor: 2,
	}
	wheelMat := physics.NewMaterial("wheel")
	for i, p := range VehicleWheelPositions {
		name := fmt.Sprintf("wheel%d", i)
		wheel, err := s.add(physics.BodyOptions{
			Name:           name,
			Mass:           1,
			Shape:          physics.Sphere(wheelRadius),
			Material:       wheelMat,
			Position:       chassisPos.Add(p),
			LinearDamping:  physics.DefaultLinearDamping,
			AngularDamping: 0.4,
		}, render.NewSphere(name, wheelRadius, render.GroundColor))
		if err != nil {
			return nil, err
		}
		h, err := s.World.AddConstraint(physics.Wheel(chassis.ID(), wheel.ID(), p, mgl64.Vec3{0, 0, 1}))
		if err != nil {
			return nil, err
		}
		act.Wheels = append(act.Wheels, h)
	}
	s.Keys.Attach(s.World, act)
	return s, nil
}
