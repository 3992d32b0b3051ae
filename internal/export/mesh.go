package export

import "math"

// mesh is an indexed triangle list in float32, the layout glTF expects.
type mesh struct {
	positions [][3]float32
	normals   [][3]float32
	indices   []uint16
}

// unitSphere is a UV sphere of radius 1.
func unitSphere(rings, segments int) mesh {
	var m mesh
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			p := [3]float32{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			m.positions = append(m.positions, p)
			m.normals = append(m.normals, p)
		}
	}
	stride := segments + 1
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint16(r*stride + s)
			b := a + uint16(stride)
			m.indices = append(m.indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return m
}

// unitBox spans [-1, 1] on every axis, four vertices per face so each face
// keeps a flat normal.
func unitBox() mesh {
	var m mesh
	faces := []struct{ n, u, v [3]float32 }{
		{[3]float32{1, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0}},
		{[3]float32{-1, 0, 0}, [3]float32{0, 0, 1}, [3]float32{0, 1, 0}},
		{[3]float32{0, 1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, -1}},
		{[3]float32{0, -1, 0}, [3]float32{1, 0, 0}, [3]float32{0, 0, 1}},
		{[3]float32{0, 0, 1}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0}},
		{[3]float32{0, 0, -1}, [3]float32{-1, 0, 0}, [3]float32{0, 1, 0}},
	}
	for _, f := range faces {
		base := uint16(len(m.positions))
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			var p [3]float32
			for i := range p {
				p[i] = f.n[i] + c[0]*f.u[i] + c[1]*f.v[i]
			}
			m.positions = append(m.positions, p)
			m.normals = append(m.normals, f.n)
		}
		m.indices = append(m.indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// unitPlane is a quad of edge 1 in the XZ plane facing +Y.
func unitPlane() mesh {
	up := [3]float32{0, 1, 0}
	return mesh{
		positions: [][3]float32{{-0.5, 0, 0.5}, {0.5, 0, 0.5}, {0.5, 0, -0.5}, {-0.5, 0, -0.5}},
		normals:   [][3]float32{up, up, up, up},
		indices:   []uint16{0, 1, 2, 0, 2, 3},
	}
}
