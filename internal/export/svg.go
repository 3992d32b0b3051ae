package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/viz"
)

// CanvasToSVG draws every lit braille dot of the canvas as a circle.
func CanvasToSVG(canvas *viz.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}
	pw, ph := canvas.PixelSize()
	width, height := float64(pw)*scale, float64(ph)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, fill)

	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if canvas.IsSet(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct{ x0, y0, w, h float64 }

// padded returns the box around points grown by a tenth of its extent on
// every side. Degenerate axes get unit extent.
func padded(points []analysis.Point) bounds {
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	w, h := hi.X-lo.X, hi.Y-lo.Y
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return bounds{x0: lo.X - w/10, y0: lo.Y - h/10, w: w * 1.2, h: h * 1.2}
}

// TrajectoryToSVG draws points as a polyline fitted into width x height.
func TrajectoryToSVG(points []analysis.Point, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}
	b := padded(points)
	fw, fh := float64(width), float64(height)

	coords := make([]string, len(points))
	for i, p := range points {
		px := (p.X - b.x0) / b.w * fw
		py := fh - (p.Y-b.y0)/b.h*fh
		coords[i] = fmt.Sprintf("%.1f,%.1f", px, py)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>
</svg>`, width, height, width, height, stroke, strings.Join(coords, " "))
	return sb.String()
}
