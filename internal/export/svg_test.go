package export

import (
	"strings"
	"testing"

	"github.com/san-kum/physlab/internal/analysis"
	"github.com/san-kum/physlab/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2, "#00ff00")
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Errorf("size wrong:\n%s", svg)
	}
	if CanvasToSVG(nil, 1, "#fff") != "" {
		t.Error("nil canvas should render nothing")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	pts := []analysis.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}}
	svg := TrajectoryToSVG(pts, 100, 50, "#ff00ff")
	if !strings.Contains(svg, "<polyline") || strings.Count(svg, ",") != 3 {
		t.Errorf("polyline wrong:\n%s", svg)
	}
	// x spans 0..2 padded to -0.2..2.2, so the first vertex sits at 100/12.
	if !strings.Contains(svg, `points="8.3,`) {
		t.Errorf("first vertex not padded:\n%s", svg)
	}
	if TrajectoryToSVG(pts[:1], 10, 10, "#fff") != "" {
		t.Error("single point should render nothing")
	}
}
