// Package audio turns contact impacts into short percussive clicks.
package audio

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	SampleRate = 44100
	BufferSize = 512

	// MinSpeed is the slowest approach speed that still makes a sound.
	MinSpeed  = 0.3
	maxVoices = 16
)

type voice struct {
	freq  float64
	amp   float64
	pan   float64
	phase float64
	age   float64
}

// Synth mixes one decaying voice per impact. It is safe to trigger from
// the physics goroutine while the audio callback renders.
type Synth struct {
	mu     sync.Mutex
	rate   float64
	decay  float64
	gain   float64
	voices []voice
}

func NewSynth(rate float64) *Synth {
	return &Synth{rate: rate, decay: 0.035, gain: 0.6}
}

func (s *Synth) OnStep(int, float64) {}

func (s *Synth) OnImpact(im physics.Impact) {
	s.Trigger(im.Speed, im.Point.X()/5)
}

// Trigger starts a click. Faster impacts are louder and slightly higher.
func (s *Synth) Trigger(speed, pan float64) bool {
	if speed < MinSpeed {
		return false
	}
	v := voice{
		freq: 1400 + 60*math.Min(speed, 20),
		amp:  math.Min(speed/8, 1),
		pan:  math.Max(-1, math.Min(1, pan)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.voices) == maxVoices {
		// steal the oldest
		copy(s.voices, s.voices[1:])
		s.voices = s.voices[:maxVoices-1]
	}
	s.voices = append(s.voices, v)
	return true
}

func (s *Synth) Voices() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

// Render fills a stereo (or mono) output buffer.
func (s *Synth) Render(out [][]float32) {
	if len(out) == 0 {
		return
	}
	dt := 1 / s.rate

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range out[0] {
		var l, r float64
		for j := range s.voices {
			v := &s.voices[j]
			env := v.amp * math.Exp(-v.age/s.decay)
			sample := env * (math.Sin(2*math.Pi*v.phase) + 0.4*math.Sin(2*math.Pi*2.76*v.phase))
			l += sample * (1 - v.pan) / 2
			r += sample * (1 + v.pan) / 2
			v.phase += v.freq * dt
			v.phase -= math.Floor(v.phase)
			v.age += dt
		}
		l, r = softClip(l*s.gain), softClip(r*s.gain)
		if len(out) == 1 {
			out[0][i] = float32((l + r) / 2)
			continue
		}
		out[0][i] = float32(l)
		out[1][i] = float32(r)
	}

	live := s.voices[:0]
	for _, v := range s.voices {
		if v.age < 8*s.decay {
			live = append(live, v)
		}
	}
	s.voices = live
}

func softClip(x float64) float64 { return math.Tanh(x) }

// Player streams a Synth to the default output device.
type Player struct {
	synth  *Synth
	stream *portaudio.Stream
	logger *log.Logger
}

func Open(s *Synth, logger *log.Logger) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, s.Render)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	if logger != nil {
		logger.Info("audio output started", "rate", SampleRate, "buffer", BufferSize)
	}
	return &Player{synth: s, stream: stream, logger: logger}, nil
}

func (p *Player) Synth() *Synth { return p.synth }

func (p *Player) Close() error {
	err := p.stream.Stop()
	if cerr := p.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
