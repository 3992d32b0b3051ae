package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
)

type MeshKind int

const (
	MeshSphere MeshKind = iota
	MeshBox
	MeshPlane
	MeshLine
)

func (k MeshKind) String() string {
	switch k {
	case MeshSphere:
		return "sphere"
	case MeshBox:
		return "box"
	case MeshPlane:
		return "plane"
	case MeshLine:
		return "line"
	default:
		return "unknown"
	}
}

// Proxy is the render-side twin of a body. Physics never reads it.
type Proxy struct {
	ID    int
	Name  string
	Mesh  MeshKind
	Color color.RGBA

	Radius      float64
	HalfExtents mgl64.Vec3
	// Size is the edge length drawn for planes.
	Size float64

	Position    mgl64.Vec3
	Orientation mgl64.Quat

	// From and To are the endpoints of a line proxy.
	From, To mgl64.Vec3

	Pickable bool
}

func NewSphere(name string, radius float64, c color.RGBA) *Proxy {
	return &Proxy{Name: name, Mesh: MeshSphere, Radius: radius, Color: c, Orientation: mgl64.QuatIdent(), Pickable: true}
}

func NewBox(name string, half mgl64.Vec3, c color.RGBA) *Proxy {
	return &Proxy{Name: name, Mesh: MeshBox, HalfExtents: half, Color: c, Orientation: mgl64.QuatIdent(), Pickable: true}
}

func NewPlane(name string, size float64, c color.RGBA) *Proxy {
	return &Proxy{Name: name, Mesh: MeshPlane, Size: size, Color: c, Orientation: mgl64.QuatIdent()}
}

func NewLine(name string, c color.RGBA) *Proxy {
	return &Proxy{Name: name, Mesh: MeshLine, Color: c, Orientation: mgl64.QuatIdent()}
}

func (p *Proxy) Transform() dynamo.Transform {
	return dynamo.Transform{Position: p.Position, Orientation: p.Orientation}
}

func (p *Proxy) SetTransform(t dynamo.Transform) {
	p.Position = t.Position
	p.Orientation = t.Orientation
}

// Registry is the ordered set of proxies drawn by a render context.
type Registry struct {
	proxies []*Proxy
	nextID  int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add assigns the proxy an id and appends it to the draw list.
func (r *Registry) Add(p *Proxy) *Proxy {
	r.nextID++
	p.ID = r.nextID
	r.proxies = append(r.proxies, p)
	return p
}

func (r *Registry) Remove(p *Proxy) bool {
	for i, q := range r.proxies {
		if q == p {
			r.proxies = append(r.proxies[:i], r.proxies[i+1:]...)
			return true
		}
	}
	return false
}

// All returns the proxies in insertion order.
func (r *Registry) All() []*Proxy {
	out := make([]*Proxy, len(r.proxies))
	copy(out, r.proxies)
	return out
}

func (r *Registry) Len() int { return len(r.proxies) }

func (r *Registry) Clear() { r.proxies = nil }
