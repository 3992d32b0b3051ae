package analysis

import (
	"math"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait pairs two recorded series, skipping samples where either
// is missing.
func PhasePortrait(xs, ys []float64) []Point {
	n := min(len(xs), len(ys))
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		pts = append(pts, Point{xs[i], ys[i]})
	}
	return pts
}

// RenderASCII draws points on a width x height character grid.
func RenderASCII(pts []Point, width, height int) string {
	if len(pts) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}
	for _, p := range pts {
		c := int((p.X - minX) / spanX * float64(width-1))
		r := height - 1 - int((p.Y-minY)/spanY*float64(height-1))
		grid[r][c] = '*'
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}
