package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

type ShapeKind int

const (
	// ShapePoint has no collision geometry. Used for anchors and pivots.
	ShapePoint ShapeKind = iota
	ShapeSphere
	ShapeBox
	// ShapePlane is an infinite half space whose surface faces local +Y.
	ShapePlane
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePoint:
		return "point"
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// Shape is a tagged variant. Only the fields of its Kind are meaningful.
type Shape struct {
	Kind        ShapeKind
	Radius      float64
	HalfExtents mgl64.Vec3
}

func Point() Shape { return Shape{Kind: ShapePoint} }

func Sphere(radius float64) Shape { return Shape{Kind: ShapeSphere, Radius: radius} }

func Box(halfExtents mgl64.Vec3) Shape { return Shape{Kind: ShapeBox, HalfExtents: halfExtents} }

func Plane() Shape { return Shape{Kind: ShapePlane} }

func (s Shape) Validate() error {
	switch s.Kind {
	case ShapePoint, ShapePlane:
		return nil
	case ShapeSphere:
		if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
			return dynamo.Invalid("sphere radius", s.Radius, "must be positive and finite")
		}
	case ShapeBox:
		for _, h := range s.HalfExtents {
			if !(h > 0) || math.IsInf(h, 0) {
				return dynamo.Invalid("box half extents", s.HalfExtents, "every extent must be positive and finite")
			}
		}
	default:
		return dynamo.Invalid("shape kind", int(s.Kind), "unknown shape")
	}
	return nil
}

// Inertia returns the principal moments of inertia for the given mass.
func (s Shape) Inertia(mass float64) mgl64.Vec3 {
	switch s.Kind {
	case ShapeSphere:
		i := 2.0 / 5.0 * mass * s.Radius * s.Radius
		return mgl64.Vec3{i, i, i}
	case ShapeBox:
		x, y, z := s.HalfExtents[0], s.HalfExtents[1], s.HalfExtents[2]
		k := mass / 3.0
		return mgl64.Vec3{k * (y*y + z*z), k * (x*x + z*z), k * (x*x + y*y)}
	default:
		return mgl64.Vec3{}
	}
}

// BoundingRadius is the radius of a sphere around the body origin that
// contains the shape. Planes report +Inf.
func (s Shape) BoundingRadius() float64 {
	switch s.Kind {
	case ShapeSphere:
		return s.Radius
	case ShapeBox:
		return s.HalfExtents.Len()
	case ShapePlane:
		return math.Inf(1)
	default:
		return 0
	}
}

// Volume is used for reporting only; planes and points have none.
func (s Shape) Volume() float64 {
	switch s.Kind {
	case ShapeSphere:
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	case ShapeBox:
		return 8 * s.HalfExtents[0] * s.HalfExtents[1] * s.HalfExtents[2]
	default:
		return 0
	}
}
