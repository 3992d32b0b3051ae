// Package gui hosts a scene in a raylib window. Raylib needs the main OS
// thread, so the window runs its own loop and drives the lifecycle's ticks.
package gui

import (
	"fmt"
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColText    = rl.NewColor(180, 180, 180, 255)
	ColTextDim = rl.NewColor(90, 90, 90, 255)
	ColGrid    = rl.NewColor(40, 40, 40, 255)
)

// Window is a scene.Backend drawing into a raylib window.
type Window struct {
	title  string
	fps    int32
	open   bool
	frames int
	width  int
	height int
}

func NewWindow(title string, fps int) *Window {
	return &Window{title: title, fps: int32(fps)}
}

func (w *Window) Open(s scene.Surface) error {
	if w.open {
		return nil
	}
	w.width, w.height = s.Size()
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.width), int32(w.height), w.title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("raylib window %dx%d did not open", w.width, w.height)
	}
	rl.SetTargetFPS(w.fps)
	rl.SetExitKey(0)
	w.open = true
	return nil
}

func (w *Window) Resize(width, height int) {
	w.width, w.height = width, height
}

func (w *Window) Draw(f scene.Frame) error {
	if !w.open {
		return fmt.Errorf("window closed")
	}
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode3D(toCamera(f.Camera))
	for _, p := range f.Proxies {
		drawProxy(p, f.Lighting)
	}
	rl.EndMode3D()

	drawOverlay(f.Overlay)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), int32(f.Width)-80, int32(f.Height)-24, 14, ColTextDim)
	rl.EndDrawing()
	w.frames++
	return nil
}

func (w *Window) Close() error {
	if w.open {
		rl.CloseWindow()
		w.open = false
	}
	return nil
}

func (w *Window) Frames() int { return w.frames }

func drawOverlay(o scene.Overlay) {
	rl.DrawText(o.Title, 20, 16, 20, ColText)
	for i, line := range o.Status {
		rl.DrawText(line, 20, int32(44+i*18), 14, ColTextDim)
	}
}

func drawProxy(p *render.Proxy, light scene.Lighting) {
	c := toColor(p.Color)
	switch p.Mesh {
	case render.MeshSphere:
		pos := vec3(p.Position)
		rl.DrawSphere(pos, float32(p.Radius), shade(c, light.Shade(light.LightPosition)))
		rl.DrawSphereWires(pos, float32(p.Radius), 8, 12, rl.ColorAlpha(rl.Black, 0.25))
	case render.MeshBox:
		angle, axis := axisAngle(p.Orientation)
		size := p.HalfExtents.Mul(2)
		rl.PushMatrix()
		rl.Translatef(float32(p.Position.X()), float32(p.Position.Y()), float32(p.Position.Z()))
		rl.Rotatef(float32(mgl64.RadToDeg(angle)), float32(axis.X()), float32(axis.Y()), float32(axis.Z()))
		rl.DrawCube(rl.Vector3{}, float32(size.X()), float32(size.Y()), float32(size.Z()), shade(c, light.Shade(mgl64.Vec3{0, 1, 0})))
		rl.DrawCubeWires(rl.Vector3{}, float32(size.X()), float32(size.Y()), float32(size.Z()), rl.Black)
		rl.PopMatrix()
	case render.MeshPlane:
		half := p.Size / 2
		lines := 16
		for i := 0; i <= lines; i++ {
			t := -half + p.Size*float64(i)/float64(lines)
			rl.DrawLine3D(vec3(p.Position.Add(mgl64.Vec3{t, 0, -half})), vec3(p.Position.Add(mgl64.Vec3{t, 0, half})), ColGrid)
			rl.DrawLine3D(vec3(p.Position.Add(mgl64.Vec3{-half, 0, t})), vec3(p.Position.Add(mgl64.Vec3{half, 0, t})), ColGrid)
		}
	case render.MeshLine:
		rl.DrawLine3D(vec3(p.From), vec3(p.To), c)
	}
}

func vec3(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Y()), float32(v.Z()))
}

func toColor(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

// shade scales the RGB channels by intensity in [0, 1].
func shade(c rl.Color, intensity float64) rl.Color {
	k := math.Max(0, math.Min(1, intensity))
	return rl.NewColor(uint8(float64(c.R)*k), uint8(float64(c.G)*k), uint8(float64(c.B)*k), c.A)
}

func toCamera(c scene.Camera) rl.Camera3D {
	return rl.NewCamera3D(vec3(c.Position), vec3(c.Target), vec3(c.Up), float32(c.FOV), rl.CameraPerspective)
}

// axisAngle converts a unit quaternion to a rotation angle in radians about
// a unit axis. The identity maps to zero about +Y.
func axisAngle(q mgl64.Quat) (float64, mgl64.Vec3) {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := q.V.Len()
	if s < 1e-9 {
		return 0, mgl64.Vec3{0, 1, 0}
	}
	return 2 * math.Atan2(s, q.W), q.V.Mul(1 / s)
}
