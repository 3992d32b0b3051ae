package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

var boxCorners = [8]mgl64.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7},
}

const planeGridLines = 8

type projector struct {
	cam    scene.Camera
	pw, ph int
}

func (p projector) point(v mgl64.Vec3) (int, int, float64, bool) {
	x, y, depth, ok := p.cam.Project(v)
	if !ok {
		return 0, 0, 0, false
	}
	px, py := scene.NDCToPixel(x, y, p.pw, p.ph)
	return int(math.Round(px)), int(math.Round(py)), depth, true
}

func (p projector) line(c *Canvas, a, b mgl64.Vec3) {
	x0, y0, _, ok0 := p.point(a)
	x1, y1, _, ok1 := p.point(b)
	if ok0 && ok1 {
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Rasterize draws the frame's proxies as wireframes, farthest first.
// Spheres are filled discs, boxes their twelve edges, planes a grid and
// lines a single segment.
func Rasterize(c *Canvas, f scene.Frame) {
	c.Clear()
	pw, ph := c.PixelSize()
	cam := f.Camera
	cam.SetAspect(pw, ph)
	p := projector{cam: cam, pw: pw, ph: ph}

	type item struct {
		proxy *render.Proxy
		depth float64
	}
	items := make([]item, 0, len(f.Proxies))
	for _, px := range f.Proxies {
		items = append(items, item{px, px.Position.Sub(cam.Position).Len()})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].depth > items[j].depth })

	for _, it := range items {
		drawProxy(c, p, it.proxy)
	}
}

func drawProxy(c *Canvas, p projector, px *render.Proxy) {
	switch px.Mesh {
	case render.MeshSphere:
		x, y, _, ok := p.point(px.Position)
		if !ok {
			return
		}
		// projected radius from a point offset along the camera's right axis
		right := p.cam.Forward().Cross(p.cam.Up).Normalize()
		ex, ey, _, ok := p.point(px.Position.Add(right.Mul(px.Radius)))
		if !ok {
			return
		}
		c.DrawCircle(x, y, math.Hypot(float64(ex-x), float64(ey-y)), true)
	case render.MeshBox:
		var corners [8]mgl64.Vec3
		for i, k := range boxCorners {
			local := mgl64.Vec3{k[0] * px.HalfExtents[0], k[1] * px.HalfExtents[1], k[2] * px.HalfExtents[2]}
			corners[i] = px.Position.Add(px.Orientation.Rotate(local))
		}
		for _, e := range boxEdges {
			p.line(c, corners[e[0]], corners[e[1]])
		}
	case render.MeshPlane:
		half := px.Size / 2
		for i := 0; i <= planeGridLines; i++ {
			t := -half + px.Size*float64(i)/planeGridLines
			p.line(c,
				px.Position.Add(px.Orientation.Rotate(mgl64.Vec3{t, 0, -half})),
				px.Position.Add(px.Orientation.Rotate(mgl64.Vec3{t, 0, half})))
			p.line(c,
				px.Position.Add(px.Orientation.Rotate(mgl64.Vec3{-half, 0, t})),
				px.Position.Add(px.Orientation.Rotate(mgl64.Vec3{half, 0, t})))
		}
	case render.MeshLine:
		p.line(c, px.From, px.To)
	}
}
