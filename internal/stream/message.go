package stream

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
)

const (
	MessageFrame   = "frame"
	MessagePointer = "pointer"
	MessageKey     = "key"
	MessageResize  = "resize"
	MessageParam   = "param"
)

type Vec3 [3]float64

func vec(v mgl64.Vec3) Vec3 { return Vec3{v[0], v[1], v[2]} }

type CameraState struct {
	FOV      float64 `json:"fov"`
	Near     float64 `json:"near"`
	Far      float64 `json:"far"`
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
	Up       Vec3    `json:"up"`
}

type ProxyState struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Mesh  string   `json:"mesh"`
	Color [4]uint8 `json:"color"`

	Radius float64 `json:"radius,omitempty"`
	Half   *Vec3   `json:"half,omitempty"`
	Size   float64 `json:"size,omitempty"`

	Position Vec3 `json:"position"`
	// Orientation is x, y, z, w.
	Orientation [4]float64 `json:"orientation"`

	From *Vec3 `json:"from,omitempty"`
	To   *Vec3 `json:"to,omitempty"`
}

// FrameMessage is broadcast to every client after each render.
type FrameMessage struct {
	Type    string       `json:"type"`
	Index   int          `json:"index"`
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Camera  CameraState  `json:"camera"`
	Light   Vec3         `json:"light"`
	Proxies []ProxyState `json:"proxies"`
	Title   string       `json:"title"`
	Status  []string     `json:"status"`
}

// ClientMessage is what browsers send back. Pointer coordinates are in
// normalised device coordinates.
type ClientMessage struct {
	Type   string  `json:"type"`
	Action string  `json:"action,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Key    string  `json:"key,omitempty"`
	Down   bool    `json:"down,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

func EncodeFrame(f scene.Frame) FrameMessage {
	msg := FrameMessage{
		Type:   MessageFrame,
		Index:  f.Index,
		Width:  f.Width,
		Height: f.Height,
		Camera: CameraState{
			FOV:      f.Camera.FOV,
			Near:     f.Camera.Near,
			Far:      f.Camera.Far,
			Position: vec(f.Camera.Position),
			Target:   vec(f.Camera.Target),
			Up:       vec(f.Camera.Up),
		},
		Light:   vec(f.Lighting.LightPosition),
		Proxies: make([]ProxyState, 0, len(f.Proxies)),
		Title:   f.Overlay.Title,
		Status:  f.Overlay.Status,
	}
	for _, p := range f.Proxies {
		msg.Proxies = append(msg.Proxies, encodeProxy(p))
	}
	return msg
}

func encodeProxy(p *render.Proxy) ProxyState {
	q := p.Orientation
	ps := ProxyState{
		ID:          p.ID,
		Name:        p.Name,
		Mesh:        p.Mesh.String(),
		Color:       [4]uint8{p.Color.R, p.Color.G, p.Color.B, p.Color.A},
		Position:    vec(p.Position),
		Orientation: [4]float64{q.V[0], q.V[1], q.V[2], q.W},
	}
	switch p.Mesh {
	case render.MeshSphere:
		ps.Radius = p.Radius
	case render.MeshBox:
		h := vec(p.HalfExtents)
		ps.Half = &h
	case render.MeshPlane:
		ps.Size = p.Size
	case render.MeshLine:
		from, to := vec(p.From), vec(p.To)
		ps.From, ps.To = &from, &to
	}
	return ps
}

// Event converts a pointer or key message into a host event. Resize and
// param messages are not events and report ok=false.
func (m ClientMessage) Event() (ev input.Event, ok bool, err error) {
	switch m.Type {
	case MessagePointer:
		var a input.PointerAction
		switch m.Action {
		case "down":
			a = input.PointerDown
		case "move":
			a = input.PointerMove
		case "up":
			a = input.PointerUp
		default:
			return ev, false, fmt.Errorf("unknown pointer action %q", m.Action)
		}
		return input.Pointer(a, m.X, m.Y), true, nil
	case MessageKey:
		if m.Key == "" {
			return ev, false, fmt.Errorf("key message without key")
		}
		return input.Key(m.Key, m.Down), true, nil
	case MessageResize, MessageParam:
		return ev, false, nil
	default:
		return ev, false, fmt.Errorf("unknown message type %q", m.Type)
	}
}
