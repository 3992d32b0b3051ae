package analysis

import "math"

// Divergence is the pointwise absolute difference of two series of equal
// sampling. Gaps in either series stay NaN.
func Divergence(a, b []float64) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Abs(a[i] - b[i])
	}
	return out
}

// SeparationRate fits ln(d) against time by least squares over the samples
// where d > floor. A positive rate means the runs separate exponentially,
// the same estimate a largest Lyapunov exponent makes.
func SeparationRate(d []float64, dt, floor float64) float64 {
	var sx, sy, sxx, sxy, n float64
	for i, v := range d {
		if math.IsNaN(v) || v <= floor {
			continue
		}
		t, y := float64(i)*dt, math.Log(v)
		sx += t
		sy += y
		sxx += t * t
		sxy += t * y
		n++
	}
	if n < 2 {
		return 0
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
