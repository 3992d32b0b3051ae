package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrShortSignal = errors.New("analysis: signal too short")

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum removes the mean, applies a Hann window and returns the
// power at frequencies 0 .. Nyquist.
func PowerSpectrum(signal []float64, dt float64) (Spectrum, error) {
	x := finite(signal)
	n := len(x)
	if n < 4 || dt <= 0 {
		return Spectrum{}, ErrShortSignal
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	windowed := make([]float64, n)
	for i, v := range x {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - mean) * w
	}

	coeffs := fft.FFTReal(windowed)
	half := n/2 + 1
	s := Spectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[k])
		s.Power[k] = a * a
	}
	return s, nil
}

// Peak returns the frequency with the most power, ignoring DC. The peak is
// refined by parabolic interpolation over its neighbours.
func (s Spectrum) Peak() (freq, power float64) {
	best := 0
	for k := 1; k < len(s.Power); k++ {
		if best == 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best == 0 {
		return 0, 0
	}
	freq, power = s.Freqs[best], s.Power[best]
	if best+1 < len(s.Power) {
		a, b, c := s.Power[best-1], s.Power[best], s.Power[best+1]
		if den := a - 2*b + c; den != 0 {
			shift := 0.5 * (a - c) / den
			freq += shift * (s.Freqs[1] - s.Freqs[0])
		}
	}
	return freq, power
}

// DominantPeriod is 1/peak frequency of the signal's power spectrum.
func DominantPeriod(signal []float64, dt float64) (float64, error) {
	s, err := PowerSpectrum(signal, dt)
	if err != nil {
		return 0, err
	}
	f, _ := s.Peak()
	if f <= 0 {
		return 0, ErrShortSignal
	}
	return 1 / f, nil
}

// ZeroCrossingPeriod estimates the period from upward crossings of the
// signal's mean, interpolating each crossing linearly.
func ZeroCrossingPeriod(signal []float64, dt float64) (float64, error) {
	x := finite(signal)
	if len(x) < 4 {
		return 0, ErrShortSignal
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var crossings []float64
	for i := 1; i < len(x); i++ {
		a, b := x[i-1]-mean, x[i]-mean
		if a < 0 && b >= 0 {
			crossings = append(crossings, (float64(i-1)+a/(a-b))*dt)
		}
	}
	if len(crossings) < 2 {
		return 0, ErrShortSignal
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1), nil
}

// finite drops NaN and Inf samples.
func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
