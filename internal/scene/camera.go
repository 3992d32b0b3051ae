package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Camera is a perspective camera. FOV is the vertical field of view in
// degrees.
type Camera struct {
	FOV      float64
	Near     float64
	Far      float64
	Aspect   float64
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
}

func DefaultCamera() Camera {
	return Camera{
		FOV:      60,
		Near:     0.1,
		Far:      1000,
		Aspect:   1,
		Position: mgl64.Vec3{0, 5, 10},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
	}
}

func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Forward is the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Ray returns the world-space ray through a point in normalised device
// coordinates, x and y in [-1, 1] with +y up.
func (c *Camera) Ray(ndcX, ndcY float64) dynamo.Ray {
	inv := c.ViewProjection().Inv()
	near := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, -1}, inv)
	far := mgl64.TransformCoordinate(mgl64.Vec3{ndcX, ndcY, 1}, inv)
	return dynamo.Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// Project maps a world point to normalised device coordinates. visible is
// false for points behind the camera or outside the depth range.
func (c *Camera) Project(p mgl64.Vec3) (x, y, depth float64, visible bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-9 {
		return 0, 0, 0, false
	}
	x, y, depth = clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	return x, y, depth, depth >= -1 && depth <= 1
}

// Orbit rotates the camera about its target by yaw and pitch radians,
// keeping the distance. Pitch is limited to avoid flipping over the pole.
func (c *Camera) Orbit(yaw, pitch float64) {
	offset := c.Position.Sub(c.Target)
	r := offset.Len()
	if r == 0 {
		return
	}
	theta := math.Atan2(offset[0], offset[2]) + yaw
	phi := math.Acos(offset[1]/r) - pitch
	phi = math.Max(0.05, math.Min(math.Pi-0.05, phi))
	c.Position = c.Target.Add(mgl64.Vec3{
		r * math.Sin(phi) * math.Sin(theta),
		r * math.Cos(phi),
		r * math.Sin(phi) * math.Cos(theta),
	})
}

// Zoom scales the distance to the target.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Position = c.Target.Add(c.Position.Sub(c.Target).Mul(factor))
}

// PixelToNDC converts a pixel position on a width x height surface.
func PixelToNDC(px, py float64, width, height int) (float64, float64) {
	return px/float64(width)*2 - 1, -(py/float64(height)*2 - 1)
}

func NDCToPixel(x, y float64, width, height int) (float64, float64) {
	return (x + 1) / 2 * float64(width), (1 - y) / 2 * float64(height)
}
