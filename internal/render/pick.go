package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Hit is the nearest proxy along a pick ray.
type Hit struct {
	Proxy    *Proxy
	Distance float64
	Point    mgl64.Vec3
}

// Pick casts ray against pickable sphere and box proxies and returns the
// nearest hit.
func Pick(ray dynamo.Ray, proxies []*Proxy) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	for _, p := range proxies {
		if !p.Pickable {
			continue
		}
		var t float64
		var ok bool
		switch p.Mesh {
		case MeshSphere:
			t, ok = raySphere(ray, p.Position, p.Radius)
		case MeshBox:
			t, ok = rayBox(ray, p.Position, p.Orientation, p.HalfExtents)
		}
		if ok && t < best.Distance {
			best = Hit{Proxy: p, Distance: t, Point: ray.At(t)}
		}
	}
	return best, best.Proxy != nil
}

func raySphere(ray dynamo.Ray, centre mgl64.Vec3, r float64) (float64, bool) {
	oc := ray.Origin.Sub(centre)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// rayBox is the slab test in the box's local frame.
func rayBox(ray dynamo.Ray, centre mgl64.Vec3, q mgl64.Quat, half mgl64.Vec3) (float64, bool) {
	inv := q.Conjugate()
	o := inv.Rotate(ray.Origin.Sub(centre))
	d := inv.Rotate(ray.Direction)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -half[i] || o[i] > half[i] {
				return 0, false
			}
			continue
		}
		t1 := (-half[i] - o[i]) / d[i]
		t2 := (half[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
