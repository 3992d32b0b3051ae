package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Menu lets the user pick a demo before the live view starts.
type Menu struct {
	names    []string
	describe func(string) string
	cursor   int
	chosen   string
}

func NewMenu(names []string, describe func(string) string) *Menu {
	return &Menu{names: names, describe: describe}
}

// Chosen is the selected demo, or "" when the menu was quit.
func (m *Menu) Chosen() string { return m.chosen }

func (m *Menu) Init() tea.Cmd { return nil }

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) > 0 {
			m.chosen = m.names[m.cursor]
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m *Menu) View() string {
	var b strings.Builder
	b.WriteString(cyan.Render("physlab") + dim.Render("  pick a scene") + "\n\n")
	for i, name := range m.names {
		line := fmt.Sprintf("%-10s %s", name, dim.Render(m.describe(name)))
		if i == m.cursor {
			b.WriteString(cyan.Render("> ") + white.Render(line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + Separator(40) + "\n")
	b.WriteString(dim.Render("↑↓ move  enter start  q quit"))
	return b.String()
}

// Pick runs the menu and returns the chosen demo.
func Pick(names []string, describe func(string) string) (string, error) {
	m := NewMenu(names, describe)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return "", err
	}
	return m.Chosen(), nil
}
