// Package export writes scene snapshots: glTF documents of the render
// proxies and SVG renderings of the terminal canvas.
package export

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/san-kum/physlab/internal/render"
)

type GLTFOptions struct {
	SphereRings    int
	SphereSegments int
}

func DefaultGLTFOptions() GLTFOptions {
	return GLTFOptions{SphereRings: 12, SphereSegments: 24}
}

type meshKey struct {
	kind  render.MeshKind
	color color.RGBA
}

type builder struct {
	doc       *gltf.Document
	opts      GLTFOptions
	meshes    map[meshKey]int
	materials map[color.RGBA]int
}

// BuildGLTF places every proxy as a node of the default scene. Spheres,
// boxes and planes share one unit mesh per kind and colour, scaled by the
// node; lines are written in world space.
func BuildGLTF(proxies []*render.Proxy, opts GLTFOptions) (*gltf.Document, error) {
	if opts.SphereRings < 2 || opts.SphereSegments < 3 {
		return nil, fmt.Errorf("sphere tessellation %dx%d too coarse", opts.SphereRings, opts.SphereSegments)
	}
	b := &builder{
		doc:       gltf.NewDocument(),
		opts:      opts,
		meshes:    make(map[meshKey]int),
		materials: make(map[color.RGBA]int),
	}
	b.doc.Asset.Generator = "physlab"

	for _, p := range proxies {
		node := &gltf.Node{
			Name:        p.Name,
			Translation: [3]float64{p.Position.X(), p.Position.Y(), p.Position.Z()},
			Rotation:    [4]float64{p.Orientation.V.X(), p.Orientation.V.Y(), p.Orientation.V.Z(), p.Orientation.W},
			Scale:       [3]float64{1, 1, 1},
		}
		switch p.Mesh {
		case render.MeshSphere:
			node.Scale = [3]float64{p.Radius, p.Radius, p.Radius}
		case render.MeshBox:
			node.Scale = [3]float64{p.HalfExtents.X(), p.HalfExtents.Y(), p.HalfExtents.Z()}
		case render.MeshPlane:
			node.Scale = [3]float64{p.Size, 1, p.Size}
		case render.MeshLine:
			node.Translation = [3]float64{}
			node.Rotation = [4]float64{0, 0, 0, 1}
		default:
			continue
		}
		node.Mesh = gltf.Index(b.mesh(p))
		b.doc.Nodes = append(b.doc.Nodes, node)
		b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, len(b.doc.Nodes)-1)
	}
	return b.doc, nil
}

func (b *builder) material(c color.RGBA) int {
	if idx, ok := b.materials[c]; ok {
		return idx
	}
	b.doc.Materials = append(b.doc.Materials, &gltf.Material{
		Name: fmt.Sprintf("rgb_%02x%02x%02x", c.R, c.G, c.B),
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255},
			MetallicFactor:  gltf.Float(0.1),
			RoughnessFactor: gltf.Float(0.6),
		},
	})
	idx := len(b.doc.Materials) - 1
	b.materials[c] = idx
	return idx
}

func (b *builder) mesh(p *render.Proxy) int {
	if p.Mesh == render.MeshLine {
		return b.line(p)
	}
	key := meshKey{p.Mesh, p.Color}
	if idx, ok := b.meshes[key]; ok {
		return idx
	}
	var m mesh
	switch p.Mesh {
	case render.MeshSphere:
		m = unitSphere(b.opts.SphereRings, b.opts.SphereSegments)
	case render.MeshBox:
		m = unitBox()
	default:
		m = unitPlane()
	}
	prim := &gltf.Primitive{
		Indices: gltf.Index(modeler.WriteIndices(b.doc, m.indices)),
		Attributes: map[string]int{
			"POSITION": modeler.WritePosition(b.doc, m.positions),
			"NORMAL":   modeler.WriteNormal(b.doc, m.normals),
		},
		Material: gltf.Index(b.material(p.Color)),
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: p.Mesh.String(), Primitives: []*gltf.Primitive{prim}})
	idx := len(b.doc.Meshes) - 1
	b.meshes[key] = idx
	return idx
}

func (b *builder) line(p *render.Proxy) int {
	pts := [][3]float32{
		{float32(p.From.X()), float32(p.From.Y()), float32(p.From.Z())},
		{float32(p.To.X()), float32(p.To.Y()), float32(p.To.Z())},
	}
	prim := &gltf.Primitive{
		Mode:       gltf.PrimitiveLines,
		Attributes: map[string]int{"POSITION": modeler.WritePosition(b.doc, pts)},
		Material:   gltf.Index(b.material(p.Color)),
	}
	b.doc.Meshes = append(b.doc.Meshes, &gltf.Mesh{Name: p.Name, Primitives: []*gltf.Primitive{prim}})
	return len(b.doc.Meshes) - 1
}

// WriteGLTF saves the proxies to path: binary for .glb, JSON with embedded
// buffers otherwise.
func WriteGLTF(path string, proxies []*render.Proxy, opts GLTFOptions) error {
	doc, err := BuildGLTF(proxies, opts)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	for _, buf := range doc.Buffers {
		buf.EmbeddedResource()
	}
	return gltf.Save(doc, path)
}
