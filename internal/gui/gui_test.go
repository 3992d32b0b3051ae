package gui

import (
	"math"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
)

func TestLoopSchedulerOrderAndCancel(t *testing.T) {
	s := newLoopScheduler()
	var got []int
	s.Request(func(time.Time) { got = append(got, 1) })
	cancel := s.Request(func(time.Time) { got = append(got, 2) })
	s.Request(func(time.Time) { got = append(got, 3) })
	cancel()

	if n := s.fire(time.Now()); n != 2 {
		t.Errorf("fired %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("order = %v", got)
	}
	if s.fire(time.Now()) != 0 {
		t.Error("requests are one-shot")
	}
}

func TestAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		q     mgl64.Quat
		angle float64
		axis  mgl64.Vec3
	}{
		{"identity", mgl64.QuatIdent(), 0, mgl64.Vec3{0, 1, 0}},
		{"quarter about z", mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), math.Pi / 2, mgl64.Vec3{0, 0, 1}},
		{"negated", mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{1, 0, 0}).Scale(-1), math.Pi / 3, mgl64.Vec3{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			angle, axis := axisAngle(tt.q)
			if math.Abs(angle-tt.angle) > 1e-9 || !axis.ApproxEqualThreshold(tt.axis, 1e-9) {
				t.Errorf("axisAngle = %v %v, want %v %v", angle, axis, tt.angle, tt.axis)
			}
		})
	}
}

func TestShade(t *testing.T) {
	c := rl.NewColor(200, 100, 50, 255)
	if got := shade(c, 0.5); got != rl.NewColor(100, 50, 25, 255) {
		t.Errorf("shade = %v", got)
	}
	if got := shade(c, 2); got != c {
		t.Errorf("shade clamps above 1: %v", got)
	}
}

func TestKeyTableNames(t *testing.T) {
	seen := map[int32]bool{}
	for _, k := range keyTable {
		if seen[k.code] {
			t.Errorf("duplicate key code %d", k.code)
		}
		seen[k.code] = true
		if k.name == "" {
			t.Errorf("key %d has no name", k.code)
		}
	}
}
