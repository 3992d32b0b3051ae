package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func sine(period, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 2 + math.Sin(2*math.Pi*float64(i)*dt/period)
	}
	return out
}

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period float64
		dt     float64
		n      int
	}{
		{"cradle swing", 1.7, 1.0 / 60, 1200},
		{"fast", 0.25, 1.0 / 120, 1000},
		{"non power of two", 2.0, 0.05, 333},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DominantPeriod(sine(tt.period, tt.dt, tt.n), tt.dt)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.period)/tt.period > 0.05 {
				t.Errorf("period = %v, want %v", got, tt.period)
			}
		})
	}
}

func TestZeroCrossingPeriod(t *testing.T) {
	got, err := ZeroCrossingPeriod(sine(1.5, 0.01, 1000), 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1.5) > 0.01 {
		t.Errorf("period = %v, want 1.5", got)
	}
}

func TestShortSignals(t *testing.T) {
	nan := math.NaN()
	if _, err := DominantPeriod([]float64{1, nan, 2}, 0.1); !errors.Is(err, ErrShortSignal) {
		t.Errorf("err = %v", err)
	}
	if _, err := ZeroCrossingPeriod([]float64{1, 1, 1, 1, 1}, 0.1); !errors.Is(err, ErrShortSignal) {
		t.Errorf("flat signal err = %v", err)
	}
	if _, err := PowerSpectrum(sine(1, 0.1, 100), 0); !errors.Is(err, ErrShortSignal) {
		t.Errorf("zero dt err = %v", err)
	}
}

func TestPhasePortraitSkipsGaps(t *testing.T) {
	pts := PhasePortrait([]float64{0, math.NaN(), 1}, []float64{0, 1, 2, 3})
	if len(pts) != 2 || pts[1] != (Point{1, 2}) {
		t.Errorf("points = %v", pts)
	}
	art := RenderASCII(pts, 5, 3)
	if strings.Count(art, "*") != 2 || strings.Count(art, "\n") != 3 {
		t.Errorf("art = %q", art)
	}
}

func TestSeparationRate(t *testing.T) {
	d := make([]float64, 100)
	for i := range d {
		d[i] = 1e-6 * math.Exp(0.8*float64(i)*0.1)
	}
	if got := SeparationRate(d, 0.1, 0); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("rate = %v, want 0.8", got)
	}
	div := Divergence([]float64{1, 2, 3}, []float64{1, 1})
	if len(div) != 2 || div[1] != 1 {
		t.Errorf("divergence = %v", div)
	}
}
