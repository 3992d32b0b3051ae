package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Lighting struct {
	Ambient     float64
	Directional float64
	// LightPosition is the directional light's position; it shines towards
	// the origin.
	LightPosition mgl64.Vec3
}

func DefaultLighting() Lighting {
	return Lighting{Ambient: 0.6, Directional: 0.8, LightPosition: mgl64.Vec3{5, 10, 5}}
}

// Shade is the Lambert intensity for a surface normal, clamped to [0, 1].
func (l Lighting) Shade(normal mgl64.Vec3) float64 {
	dir := l.LightPosition.Normalize()
	diffuse := math.Max(0, normal.Normalize().Dot(dir))
	return math.Min(1, l.Ambient+l.Directional*diffuse)
}
