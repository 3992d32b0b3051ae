package viz

import (
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/actuation"
	"github.com/san-kum/physlab/internal/demo"
	"github.com/san-kum/physlab/internal/render"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
)

func TestCanvasSetAndCircle(t *testing.T) {
	c := NewCanvas(4, 2)
	if w, h := c.PixelSize(); w != 8 || h != 8 {
		t.Fatalf("pixel size %dx%d", w, h)
	}
	c.Set(1, 3)
	if !c.IsSet(1, 3) || c.IsSet(0, 3) {
		t.Error("Set lit the wrong dot")
	}
	if c.Grid[0][0] != 0x2800|0x80 {
		t.Errorf("cell = %U", c.Grid[0][0])
	}
	c.Set(-1, 0)
	c.Set(100, 100)

	c.Clear()
	c.DrawCircle(4, 4, 2, true)
	if !c.IsSet(4, 4) || !c.IsSet(6, 4) || c.IsSet(7, 4) {
		t.Error("filled circle wrong")
	}
	if lines := strings.Count(c.String(), "\n"); lines != 2 {
		t.Errorf("String has %d lines", lines)
	}
}

func TestRasterizeProjectsSphere(t *testing.T) {
	c := NewCanvas(40, 20)
	cam := scene.DefaultCamera()
	cam.Position = mgl64.Vec3{0, 0, 10}
	ball := render.NewSphere("ball", 1, render.DefaultColor)
	line := render.NewLine("string", render.StringColor)
	line.From, line.To = mgl64.Vec3{-3, 2, 0}, mgl64.Vec3{3, 2, 0}

	Rasterize(c, scene.Frame{Camera: cam, Proxies: []*render.Proxy{ball, line}})

	w, h := c.PixelSize()
	if !c.IsSet(w/2, h/2) {
		t.Error("sphere at the origin not drawn at the centre")
	}
	if c.IsSet(0, h-1) {
		t.Error("corner lit")
	}
}

func TestTerminalBackend(t *testing.T) {
	term := NewTerminal()
	if err := term.Draw(scene.Frame{}); err == nil {
		t.Error("draw before open should fail")
	}
	if err := term.Open(scene.NewStaticSurface(1, 1)); err == nil {
		t.Error("open on a sub-cell surface should fail")
	}
	if err := term.Open(scene.NewStaticSurface(20, 20)); err != nil {
		t.Fatal(err)
	}
	term.Resize(40, 8)
	if c := term.Canvas(); c.Width != 20 || c.Height != 2 {
		t.Errorf("canvas %dx%d after resize", c.Width, c.Height)
	}
	if err := term.Draw(scene.Frame{Overlay: scene.Overlay{Title: "x"}}); err != nil {
		t.Fatal(err)
	}
	if _, o := term.Snapshot(); o.Title != "x" || term.Frames() != 1 {
		t.Errorf("overlay %+v frames %d", o, term.Frames())
	}
}

func newModel(t *testing.T, name string) *Model {
	t.Helper()
	sc, err := demo.Build(name, demo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewModel(sim.New(sc), log.New(io.Discard), WithSize(30, 10))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestModelTicksDriveFrames(t *testing.T) {
	m := newModel(t, "cradle")
	start := time.Unix(0, 0)
	_, cmd := m.Update(TickMsg(start))
	if cmd == nil {
		t.Fatal("tick did not schedule the next tick")
	}
	m.Update(TickMsg(start.Add(time.Second / 60)))
	if m.Terminal().Frames() != 2 {
		t.Errorf("frames = %d, want 2", m.Terminal().Frames())
	}
	if v := m.View(); !strings.Contains(v, "NEWTON") {
		t.Errorf("view missing title:\n%s", v)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil || !m.Lifecycle().Disposed() {
		t.Error("q did not dispose and quit")
	}
}

func TestModelHoldsKeysUntilRepeatsStop(t *testing.T) {
	m := newModel(t, "vehicle")
	keys := m.sim.Scene().Keys
	start := time.Unix(0, 0)
	m.Update(TickMsg(start))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'W'}})
	m.Update(TickMsg(start.Add(50 * time.Millisecond)))
	if !keys.Held(actuation.Forward) || !keys.Held(actuation.Boost) {
		t.Fatal("W did not hold forward and boost")
	}
	m.Update(TickMsg(start.Add(400 * time.Millisecond)))
	if keys.Held(actuation.Forward) || keys.Held(actuation.Boost) {
		t.Error("keys still held after repeats stopped")
	}
}

func TestModelMouseMapsToCanvas(t *testing.T) {
	m := newModel(t, "cradle")
	x, y := m.ndc(15, canvasTop+5)
	if x < -0.15 || x > 0.15 || y < -0.15 || y > 0.15 {
		t.Errorf("centre cell maps to (%v, %v)", x, y)
	}
	x, y = m.ndc(canvasLeft, canvasTop)
	if x > -0.9 || y < 0.85 {
		t.Errorf("top-left cell maps to (%v, %v)", x, y)
	}
}

func TestMenu(t *testing.T) {
	m := NewMenu([]string{"cradle", "drop"}, func(string) string { return "" })
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.Chosen() != "drop" {
		t.Errorf("chosen = %q", m.Chosen())
	}
	if !strings.Contains(m.View(), "cradle") {
		t.Error("menu view missing entries")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "cyberpunk" {
		t.Error("unknown theme did not fall back")
	}
	if NextTheme(ThemeSunset).Name != Themes[0].Name {
		t.Error("NextTheme does not wrap")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length")
	}
}
