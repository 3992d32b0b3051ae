package demo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/physics"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	CradleBalls        = 5
	CradleRadius       = 0.3
	CradleStringLength = 3.0
	CradlePivotHeight  = 5.0
	// CradleRestHeight is the height of a hanging ball's centre.
	CradleRestHeight = CradlePivotHeight - CradleStringLength
)

// CradlePullBack is the displacement requested for the first ball. It is
// projected back onto the string circle before the ball is placed.
var CradlePullBack = mgl64.Vec3{-1.5, 1, 0}

var cradleBallColor = render.PaletteColor(2)

func CradleConfig() physics.Config {
	cfg := physics.DefaultConfig()
	cfg.Gravity = mgl64.Vec3{0, -9.82, 0}
	cfg.FixedTimestep = 1.0 / 240
	cfg.MaxSubSteps = 20
	cfg.SolverIterations = 30
	cfg.SolverTolerance = 0
	cfg.AllowSleep = true
	return cfg
}

func buildCradle(opts Options) (*Scene, error) {
	s, err := newScene("cradle", "Newton's Cradle", CradleConfig(), opts)
	if err != nil {
		return nil, err
	}
	reg := opts.regime()
	ballMat := physics.NewMaterial("ball")
	if err := s.World.AddContactMaterial(physics.ContactMaterial{
		A:           "ball",
		B:           "ball",
		Friction:    0,
		Restitution: 0.999,
		Stiffness:   reg.Stiffness,
		Relaxation:  reg.Relaxation,
	}); err != nil {
		return nil, err
	}

	s.Camera = scene.DefaultCamera()
	s.Camera.Position = mgl64.Vec3{0, 3, 8}
	s.Camera.Target = mgl64.Vec3{0, 3, 0}
	s.Help = []string{"drag a ball sideways and let go"}

	frame := render.Palette[3]
	s.decor(render.NewBox("post-left", mgl64.Vec3{0.05, 2.5, 0.05}, frame)).Position = mgl64.Vec3{-3, 2.5, 0}
	s.decor(render.NewBox("post-right", mgl64.Vec3{0.05, 2.5, 0.05}, frame)).Position = mgl64.Vec3{3, 2.5, 0}
	s.decor(render.NewBox("bar", mgl64.Vec3{3, 0.05, 0.05}, frame)).Position = mgl64.Vec3{0, CradlePivotHeight, 0}

	spacing := CradleRadius * 2.005
	for i := 0; i < CradleBalls; i++ {
		x := (float64(i) - float64(CradleBalls-1)/2) * spacing
		anchor := mgl64.Vec3{x, CradlePivotHeight, 0}
		pos := mgl64.Vec3{x, CradleRestHeight, 0}
		if i == 0 {
			pos = onString(anchor, pos.Add(CradlePullBack), CradleStringLength)
		}

		name := fmt.Sprintf("ball%d", i)
		ball, err := s.add(physics.BodyOptions{
			Name:            name,
			Mass:            1,
			Shape:           physics.Sphere(CradleRadius),
			Material:        ballMat,
			Position:        pos,
			SleepSpeedLimit: 0.01,
			SleepTimeLimit:  0.5,
		}, render.NewSphere(name, CradleRadius, cradleBallColor))
		if err != nil {
			return nil, err
		}
		pivot, err := s.add(physics.BodyOptions{Name: fmt.Sprintf("pivot%d", i), Position: anchor}, nil)
		if err != nil {
			return nil, err
		}

		spec := physics.Distance(ball.ID(), pivot.ID(), CradleStringLength)
		spec.MaxForce = 1e8
		if _, err := s.World.AddConstraint(spec); err != nil {
			return nil, err
		}
		line := s.decor(render.NewLine(fmt.Sprintf("string%d", i), render.StringColor))
		s.Sync.Tether(line, anchor, ball.ID())
	}
	return s, nil
}

// onString moves p onto the sphere of radius length about anchor.
func onString(anchor, p mgl64.Vec3, length float64) mgl64.Vec3 {
	d := p.Sub(anchor)
	if d.Len() == 0 {
		return anchor.Sub(mgl64.Vec3{0, length, 0})
	}
	return anchor.Add(d.Normalize().Mul(length))
}
