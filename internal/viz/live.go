package viz

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physlab/internal/input"
	"github.com/san-kum/physlab/internal/metrics"
	"github.com/san-kum/physlab/internal/scene"
	"github.com/san-kum/physlab/internal/sim"
)

const (
	defaultCols     = 60
	defaultRows     = 20
	statsWidth      = 46
	historyCapacity = 600
	// Terminals report presses only; a key counts as held until it stops
	// repeating for this long.
	keyHold = 150 * time.Millisecond

	canvasTop  = 2
	canvasLeft = 0
)

var (
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(statsWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model hosts a simulator in the terminal. Bubble Tea ticks drive the
// scene lifecycle; keys and mouse events are queued onto the simulator.
type Model struct {
	sim     *sim.Simulator
	lc      *scene.Lifecycle
	term    *Terminal
	sched   *teaScheduler
	surface *scene.StaticSurface

	fps        int
	cols, rows int
	energy     []float64
	held       map[string]time.Time
	lastTick   time.Time
	dragging   bool
	showHelp   bool
	theme      Theme
}

type Option func(*Model)

func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.fps = fps
		}
	}
}

// WithSize sets the initial canvas size in terminal cells.
func WithSize(cols, rows int) Option {
	return func(m *Model) { m.cols, m.rows = cols, rows }
}

func WithTheme(name string) Option {
	return func(m *Model) { m.theme = GetTheme(name) }
}

func NewModel(s *sim.Simulator, logger *log.Logger, opts ...Option) (*Model, error) {
	m := &Model{
		sim:    s,
		term:   NewTerminal(),
		sched:  newTeaScheduler(),
		fps:    60,
		cols:   defaultCols,
		rows:   defaultRows,
		energy: make([]float64, 0, historyCapacity),
		held:   make(map[string]time.Time),
		theme:  ThemeCyberpunk,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.surface = scene.NewStaticSurface(m.cols*2, m.rows*4)
	m.lc = scene.NewLifecycle(m.term, m.sched, scene.WithLogger(logger.WithPrefix("scene")))
	if err := s.Host(m.lc, m.surface); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Lifecycle() *scene.Lifecycle { return m.lc }
func (m *Model) Terminal() *Terminal         { return m.term }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		m.lastTick = now
		m.releaseStale(now)
		m.sched.fire(now)
		m.energy = append(m.energy, metrics.TotalEnergy(m.sim.World()))
		if len(m.energy) > historyCapacity {
			m.energy = m.energy[1:]
		}
		if m.lc.Disposed() {
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.cols = max(20, msg.Width-statsWidth-2)
		m.rows = max(8, msg.Height-canvasTop-2)
		m.surface.SetSize(m.cols*2, m.rows*4)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	cam := m.sim.Camera()
	switch k := msg.String(); k {
	case "ctrl+c", "q", "esc":
		if err := m.lc.Dispose(); err != nil {
			log.Error("dispose", "err", err)
		}
		return tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "t":
		m.theme = NextTheme(m.theme)
	case "+", "=":
		cam.Zoom(0.9)
	case "-", "_":
		cam.Zoom(1.1)
	case ",":
		cam.Orbit(-0.1, 0)
	case ".":
		cam.Orbit(0.1, 0)
	default:
		if len(k) == 1 && unicode.IsUpper(rune(k[0])) {
			m.hold("shift")
		}
		m.hold(input.NormalizeKey(k))
	}
	return nil
}

func (m *Model) hold(key string) {
	if _, ok := m.held[key]; !ok {
		m.sim.Push(input.Key(key, true))
	}
	m.held[key] = m.lastTick
}

func (m *Model) releaseStale(now time.Time) {
	for k, at := range m.held {
		if now.Sub(at) > keyHold {
			m.sim.Push(input.Key(k, false))
			delete(m.held, k)
		}
	}
}

// ndc maps a terminal cell to normalised device coordinates of the canvas.
func (m *Model) ndc(x, y int) (float64, float64) {
	px := float64((x-canvasLeft)*2 + 1)
	py := float64((y-canvasTop)*4 + 2)
	return scene.PixelToNDC(px, py, m.cols*2, m.rows*4)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := m.ndc(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.sim.Camera().Zoom(0.9)
	case msg.Button == tea.MouseButtonWheelDown:
		m.sim.Camera().Zoom(1.1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.sim.Push(input.Pointer(input.PointerDown, x, y))
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.sim.Push(input.Pointer(input.PointerMove, x, y))
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.sim.Push(input.Pointer(input.PointerUp, x, y))
	}
}

func (m *Model) View() string {
	canvas, overlay := m.term.Snapshot()
	title := overlay.Title
	if title == "" {
		title = m.sim.Scene().Title
	}

	var s strings.Builder
	for _, line := range overlay.Status {
		s.WriteString(labelStyle.Render(line) + "\n")
	}
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy (J)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(helpStyle.Render("drag: mouse   keys: wasd/arrows space shift\np: pause  , .: orbit  + -: zoom  t: theme  q: quit"))

	canvasView := lipgloss.NewStyle().Foreground(m.theme.Primary).Render(canvas)
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	header := headerStyle.Foreground(m.theme.Secondary).Render(strings.ToUpper(title))
	if m.showHelp {
		return header + "\n" + helpPanel(m.sim.Scene().Help) + "\n" + main
	}
	return header + "\n" + main
}

func helpPanel(lines []string) string {
	if len(lines) == 0 {
		lines = []string{"no scene controls"}
	}
	return BoxWithTitle("controls", strings.Join(lines, "\n"), 40)
}

// Run starts a Bubble Tea program for m and blocks until it quits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	return m.lc.Dispose()
}
