package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/physics"
)

type fakeSource map[physics.BodyID]dynamo.Transform

func (f fakeSource) Transform(id physics.BodyID) (dynamo.Transform, bool) {
	t, ok := f[id]
	return t, ok
}

func TestSyncCopiesTransforms(t *testing.T) {
	s := NewSync()
	a := NewSphere("a", 0.3, color.RGBA{})
	b := NewBox("b", mgl64.Vec3{1, 1, 1}, color.RGBA{})
	if err := s.Bind(1, a); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(2, b); err != nil {
		t.Fatal(err)
	}

	rot := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	src := fakeSource{
		1: {Position: mgl64.Vec3{1, 2, 3}, Orientation: mgl64.QuatIdent()},
		2: {Position: mgl64.Vec3{-1, 0, 4}, Orientation: rot},
	}
	s.Apply(src)

	if a.Position != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected a at (1,2,3), got %v", a.Position)
	}
	if b.Orientation != rot {
		t.Errorf("expected b orientation %v, got %v", rot, b.Orientation)
	}
	if len(s.Stale()) != 0 {
		t.Errorf("expected no stale bindings, got %v", s.Stale())
	}
}

func TestSyncRejectsDuplicateProxy(t *testing.T) {
	s := NewSync()
	p := NewSphere("p", 1, color.RGBA{})
	if err := s.Bind(1, p); err != nil {
		t.Fatal(err)
	}
	if err := s.Bind(2, p); !errors.Is(err, dynamo.ErrDuplicateBinding) {
		t.Errorf("expected duplicate binding error, got %v", err)
	}
	if err := s.Bind(1, NewSphere("q", 1, color.RGBA{})); !errors.Is(err, dynamo.ErrDuplicateBinding) {
		t.Errorf("expected duplicate body error, got %v", err)
	}
}

func TestSyncSkipsMissingBodies(t *testing.T) {
	s := NewSync()
	p := NewSphere("p", 1, color.RGBA{})
	p.Position = mgl64.Vec3{9, 9, 9}
	_ = s.Bind(7, p)

	s.Apply(fakeSource{})
	if p.Position != (mgl64.Vec3{9, 9, 9}) {
		t.Errorf("expected untouched proxy, got %v", p.Position)
	}
	if stale := s.Stale(); len(stale) != 1 || stale[0] != 7 {
		t.Errorf("expected body 7 reported stale, got %v", stale)
	}
}

func TestSyncBodyAndTethers(t *testing.T) {
	s := NewSync()
	ball := NewSphere("ball", 0.3, color.RGBA{})
	other := NewSphere("other", 0.3, color.RGBA{})
	line := NewLine("string", color.RGBA{})
	_ = s.Bind(1, ball)
	_ = s.Bind(2, other)
	s.Tether(line, mgl64.Vec3{0, 5, 0}, 1)

	src := fakeSource{
		1: {Position: mgl64.Vec3{1, 2, 0}, Orientation: mgl64.QuatIdent()},
		2: {Position: mgl64.Vec3{5, 5, 5}, Orientation: mgl64.QuatIdent()},
	}
	if !s.SyncBody(src, 1) {
		t.Fatal("expected SyncBody to succeed")
	}
	if ball.Position != (mgl64.Vec3{1, 2, 0}) {
		t.Errorf("expected ball synced, got %v", ball.Position)
	}
	if other.Position != (mgl64.Vec3{}) {
		t.Errorf("expected other proxy untouched, got %v", other.Position)
	}
	if line.From != (mgl64.Vec3{0, 5, 0}) || line.To != (mgl64.Vec3{1, 2, 0}) {
		t.Errorf("expected tether from anchor to ball, got %v -> %v", line.From, line.To)
	}

	s.Unbind(1)
	if _, ok := s.ProxyFor(1); ok {
		t.Error("expected binding removed")
	}
	if id, ok := s.ProxyBody(other); !ok || id != 2 {
		t.Errorf("expected other still bound to 2, got %d %v", id, ok)
	}
	if len(s.Tethers()) != 0 {
		t.Errorf("expected tether dropped with its body, got %d", len(s.Tethers()))
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry()
	a := r.Add(NewSphere("a", 1, color.RGBA{}))
	b := r.Add(NewSphere("b", 1, color.RGBA{}))
	c := r.Add(NewSphere("c", 1, color.RGBA{}))

	if !r.Remove(b) {
		t.Fatal("expected remove to succeed")
	}
	all := r.All()
	if len(all) != 2 || all[0] != a || all[1] != c {
		t.Errorf("unexpected order after removal: %v", all)
	}
	if a.ID == c.ID {
		t.Error("expected distinct ids")
	}
}
