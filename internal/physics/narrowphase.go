package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contact is one contact point. normal points from bi towards bj; ri and rj
// are the contact points relative to each body's centre.
type contact struct {
	bi, bj *Body
	normal mgl64.Vec3
	ri, rj mgl64.Vec3
	depth  float64
}

func (c contact) flipped() contact {
	return contact{bi: c.bj, bj: c.bi, normal: c.normal.Mul(-1), ri: c.rj, rj: c.ri, depth: c.depth}
}

// relativeSpeed is the approach speed along the normal; positive when the
// bodies move towards each other.
func (c contact) relativeSpeed() float64 {
	vi, vj := pointVelocity(c.bi, c.ri), pointVelocity(c.bj, c.rj)
	return -vj.Sub(vi).Dot(c.normal)
}

func pointVelocity(b *Body, r mgl64.Vec3) mgl64.Vec3 {
	return b.motion.Velocity.Add(b.motion.AngularVelocity.Cross(r))
}

func canCollide(a, b *Body) bool {
	if a.shape.Kind == ShapePoint || b.shape.Kind == ShapePoint {
		return false
	}
	aStill := a.IsStatic() || a.sleepState == Sleeping
	bStill := b.IsStatic() || b.sleepState == Sleeping
	if aStill && bStill {
		return false
	}
	if a.shape.Kind == ShapePlane || b.shape.Kind == ShapePlane {
		return true
	}
	reach := a.shape.BoundingRadius() + b.shape.BoundingRadius()
	d := b.motion.Position.Sub(a.motion.Position)
	return d.Dot(d) <= reach*reach
}

// collide generates contacts for the pair with a as bi.
func collide(a, b *Body, out []contact) []contact {
	if a.shape.Kind > b.shape.Kind {
		start := len(out)
		out = collide(b, a, out)
		for i := start; i < len(out); i++ {
			out[i] = out[i].flipped()
		}
		return out
	}
	switch {
	case a.shape.Kind == ShapeSphere && b.shape.Kind == ShapeSphere:
		return sphereSphere(a, b, out)
	case a.shape.Kind == ShapeSphere && b.shape.Kind == ShapeBox:
		return sphereBox(a, b, out)
	case a.shape.Kind == ShapeSphere && b.shape.Kind == ShapePlane:
		return spherePlane(a, b, out)
	case a.shape.Kind == ShapeBox && b.shape.Kind == ShapeBox:
		return boxBox(a, b, out)
	case a.shape.Kind == ShapeBox && b.shape.Kind == ShapePlane:
		return boxPlane(a, b, out)
	}
	return out
}

func sphereSphere(a, b *Body, out []contact) []contact {
	d := b.motion.Position.Sub(a.motion.Position)
	dist := d.Len()
	rs := a.shape.Radius + b.shape.Radius
	if dist >= rs {
		return out
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return append(out, contact{
		bi:     a,
		bj:     b,
		normal: n,
		ri:     n.Mul(a.shape.Radius),
		rj:     n.Mul(-b.shape.Radius),
		depth:  rs - dist,
	})
}

func planeFrame(p *Body) (point, normal mgl64.Vec3) {
	return p.motion.Position, p.motion.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

func spherePlane(s, p *Body, out []contact) []contact {
	point, n := planeFrame(p)
	height := s.motion.Position.Sub(point).Dot(n)
	if height >= s.shape.Radius {
		return out
	}
	onPlane := s.motion.Position.Sub(n.Mul(height))
	c := contact{
		bi:     p,
		bj:     s,
		normal: n,
		ri:     onPlane.Sub(point),
		rj:     n.Mul(-s.shape.Radius),
		depth:  s.shape.Radius - height,
	}
	return append(out, c.flipped())
}

func boxCorners(b *Body) [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	h := b.shape.HalfExtents
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				corners[i] = b.PointToWorld(mgl64.Vec3{sx * h[0], sy * h[1], sz * h[2]})
				i++
			}
		}
	}
	return corners
}

func boxPlane(bx, p *Body, out []contact) []contact {
	point, n := planeFrame(p)
	for _, corner := range boxCorners(bx) {
		height := corner.Sub(point).Dot(n)
		if height >= 0 {
			continue
		}
		c := contact{
			bi:     p,
			bj:     bx,
			normal: n,
			ri:     corner.Sub(n.Mul(height)).Sub(point),
			rj:     corner.Sub(bx.motion.Position),
			depth:  -height,
		}
		out = append(out, c.flipped())
	}
	return out
}

func sphereBox(s, bx *Body, out []contact) []contact {
	local := bx.PointToLocal(s.motion.Position)
	h := bx.shape.HalfExtents
	r := s.shape.Radius

	var closest mgl64.Vec3
	inside := true
	for i := 0; i < 3; i++ {
		closest[i] = math.Max(-h[i], math.Min(h[i], local[i]))
		if closest[i] != local[i] {
			inside = false
		}
	}

	var n mgl64.Vec3
	var depth float64
	if !inside {
		d := local.Sub(closest)
		dist := d.Len()
		if dist >= r {
			return out
		}
		n = bx.VectorToWorld(d.Mul(1 / dist))
		depth = r - dist
	} else {
		axis, sign, gap := 0, 1.0, math.Inf(1)
		for i := 0; i < 3; i++ {
			g := h[i] - math.Abs(local[i])
			if g < gap {
				axis, gap = i, g
				sign = 1
				if local[i] < 0 {
					sign = -1
				}
			}
		}
		closest[axis] = sign * h[axis]
		var ln mgl64.Vec3
		ln[axis] = sign
		n = bx.VectorToWorld(ln)
		depth = r + gap
	}

	c := contact{
		bi:     bx,
		bj:     s,
		normal: n,
		ri:     bx.VectorToWorld(closest),
		rj:     n.Mul(-r),
		depth:  depth,
	}
	return append(out, c.flipped())
}

// boxBox tests every corner of each box against the other box and pushes
// penetrating corners out through the nearest face.
func boxBox(a, b *Body, out []contact) []contact {
	out = cornersInBox(a, b, out, false)
	return cornersInBox(b, a, out, true)
}

func cornersInBox(cornerBody, faceBody *Body, out []contact, faceIsA bool) []contact {
	h := faceBody.shape.HalfExtents
	for _, corner := range boxCorners(cornerBody) {
		local := faceBody.PointToLocal(corner)
		if math.Abs(local[0]) >= h[0] || math.Abs(local[1]) >= h[1] || math.Abs(local[2]) >= h[2] {
			continue
		}
		axis, sign, gap := 0, 1.0, math.Inf(1)
		for i := 0; i < 3; i++ {
			g := h[i] - math.Abs(local[i])
			if g < gap {
				axis, gap = i, g
				sign = 1
				if local[i] < 0 {
					sign = -1
				}
			}
		}
		var ln mgl64.Vec3
		ln[axis] = sign
		n := faceBody.VectorToWorld(ln)
		surface := corner.Add(n.Mul(gap))
		c := contact{
			bi:     faceBody,
			bj:     cornerBody,
			normal: n,
			ri:     surface.Sub(faceBody.motion.Position),
			rj:     corner.Sub(cornerBody.motion.Position),
			depth:  gap,
		}
		if !faceIsA {
			c = c.flipped()
		}
		out = append(out, c)
	}
	return out
}
