package audio

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/physlab/internal/physics"
)

func render(s *Synth, n int) [][]float32 {
	out := [][]float32{make([]float32, n), make([]float32, n)}
	s.Render(out)
	return out
}

func peak(buf []float32) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestTriggerThreshold(t *testing.T) {
	tests := []struct {
		speed float64
		want  bool
	}{
		{0, false},
		{MinSpeed / 2, false},
		{MinSpeed, true},
		{12, true},
	}
	for _, tt := range tests {
		s := NewSynth(SampleRate)
		if got := s.Trigger(tt.speed, 0); got != tt.want {
			t.Errorf("Trigger(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestSilentWithoutImpacts(t *testing.T) {
	s := NewSynth(SampleRate)
	out := render(s, BufferSize)
	if peak(out[0]) != 0 || peak(out[1]) != 0 {
		t.Error("expected silence")
	}
}

func TestImpactDecays(t *testing.T) {
	s := NewSynth(SampleRate)
	s.OnImpact(physics.Impact{Speed: 6, Point: mgl64.Vec3{0, 0, 0}})

	first := render(s, BufferSize)
	if peak(first[0]) == 0 {
		t.Fatal("impact produced no sound")
	}
	for i := 0; i < 40; i++ {
		render(s, BufferSize)
	}
	if s.Voices() != 0 {
		t.Errorf("voices = %d after decay, want 0", s.Voices())
	}
	if p := peak(render(s, BufferSize)[0]); p != 0 {
		t.Errorf("tail peak = %v", p)
	}
}

func TestPanAndVoiceLimit(t *testing.T) {
	s := NewSynth(SampleRate)
	s.Trigger(5, 1)
	out := render(s, 256)
	if peak(out[0]) != 0 || peak(out[1]) == 0 {
		t.Errorf("hard right pan leaked: L=%v R=%v", peak(out[0]), peak(out[1]))
	}

	for i := 0; i < 3*maxVoices; i++ {
		s.Trigger(5, 0)
	}
	if s.Voices() != maxVoices {
		t.Errorf("voices = %d, want %d", s.Voices(), maxVoices)
	}
	for _, v := range render(s, 256)[0] {
		if math.Abs(float64(v)) > 1 {
			t.Fatal("output not clipped")
		}
	}
}
