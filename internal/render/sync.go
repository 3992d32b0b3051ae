package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

// BodySource is the read-only view of the world that Sync copies from.
type BodySource interface {
	Transform(id physics.BodyID) (dynamo.Transform, bool)
}

type Binding struct {
	Body  physics.BodyID
	Proxy *Proxy
}

// Tether is a line proxy stretched from a fixed anchor to a body.
type Tether struct {
	Proxy  *Proxy
	Anchor mgl64.Vec3
	Body   physics.BodyID
}

// Sync is the explicit join between bodies and proxies. Data flows one way,
// from bodies to proxies.
type Sync struct {
	bindings []Binding
	byBody   map[physics.BodyID]int
	byProxy  map[*Proxy]physics.BodyID
	tethers  []Tether
	stale    []physics.BodyID
}

func NewSync() *Sync {
	return &Sync{
		byBody:  make(map[physics.BodyID]int),
		byProxy: make(map[*Proxy]physics.BodyID),
	}
}

// Bind joins a body to a proxy. A proxy can be bound to one body only and a
// body drives one proxy.
func (s *Sync) Bind(body physics.BodyID, p *Proxy) error {
	if p == nil {
		return fmt.Errorf("bind body %d: nil proxy", body)
	}
	if owner, ok := s.byProxy[p]; ok {
		return fmt.Errorf("bind %q to body %d (owned by %d): %w", p.Name, body, owner, dynamo.ErrDuplicateBinding)
	}
	if _, ok := s.byBody[body]; ok {
		return fmt.Errorf("bind %q: body %d already drives a proxy: %w", p.Name, body, dynamo.ErrDuplicateBinding)
	}
	s.byBody[body] = len(s.bindings)
	s.byProxy[p] = body
	s.bindings = append(s.bindings, Binding{Body: body, Proxy: p})
	return nil
}

func (s *Sync) Unbind(body physics.BodyID) {
	i, ok := s.byBody[body]
	if !ok {
		return
	}
	delete(s.byProxy, s.bindings[i].Proxy)
	delete(s.byBody, body)
	s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
	for j := i; j < len(s.bindings); j++ {
		s.byBody[s.bindings[j].Body] = j
	}
	kept := s.tethers[:0]
	for _, t := range s.tethers {
		if t.Body != body {
			kept = append(kept, t)
		}
	}
	s.tethers = kept
}

func (s *Sync) Tether(p *Proxy, anchor mgl64.Vec3, body physics.BodyID) {
	p.From = anchor
	s.tethers = append(s.tethers, Tether{Proxy: p, Anchor: anchor, Body: body})
}

// Apply copies position and orientation from every bound body onto its
// proxy, then re-stretches tethers. Bindings whose body is gone are skipped
// and reported by Stale.
func (s *Sync) Apply(src BodySource) {
	s.stale = s.stale[:0]
	for _, b := range s.bindings {
		tr, ok := src.Transform(b.Body)
		if !ok {
			s.stale = append(s.stale, b.Body)
			continue
		}
		b.Proxy.SetTransform(tr)
	}
	s.applyTethers(src, 0)
}

// SyncBody re-copies a single binding.
func (s *Sync) SyncBody(src BodySource, body physics.BodyID) bool {
	i, ok := s.byBody[body]
	if !ok {
		return false
	}
	tr, ok := src.Transform(body)
	if !ok {
		return false
	}
	s.bindings[i].Proxy.SetTransform(tr)
	s.applyTethers(src, body)
	return true
}

// applyTethers updates tethers attached to only, or all of them when only is
// zero.
func (s *Sync) applyTethers(src BodySource, only physics.BodyID) {
	for _, t := range s.tethers {
		if only != 0 && t.Body != only {
			continue
		}
		tr, ok := src.Transform(t.Body)
		if !ok {
			continue
		}
		t.Proxy.From = t.Anchor
		t.Proxy.To = tr.Position
		t.Proxy.Position = t.Anchor.Add(tr.Position).Mul(0.5)
	}
}

func (s *Sync) ProxyFor(body physics.BodyID) (*Proxy, bool) {
	i, ok := s.byBody[body]
	if !ok {
		return nil, false
	}
	return s.bindings[i].Proxy, true
}

func (s *Sync) ProxyBody(p *Proxy) (physics.BodyID, bool) {
	id, ok := s.byProxy[p]
	return id, ok
}

// Bindings returns the join table in bind order.
func (s *Sync) Bindings() []Binding {
	out := make([]Binding, len(s.bindings))
	copy(out, s.bindings)
	return out
}

func (s *Sync) Tethers() []Tether {
	out := make([]Tether, len(s.tethers))
	copy(out, s.tethers)
	return out
}

func (s *Sync) Stale() []physics.BodyID {
	return append([]physics.BodyID(nil), s.stale...)
}
