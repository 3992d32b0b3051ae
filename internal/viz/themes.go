package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the canvas and the header.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{Name: "cyberpunk", Primary: lipgloss.Color("#00ffff"), Secondary: lipgloss.Color("#ff00ff")}
	ThemeRetro     = Theme{Name: "retro", Primary: lipgloss.Color("#00ff00"), Secondary: lipgloss.Color("#88ff88")}
	ThemeMinimal   = Theme{Name: "minimal", Primary: lipgloss.Color("#ffffff"), Secondary: lipgloss.Color("#0088ff")}
	ThemeSunset    = Theme{Name: "sunset", Primary: lipgloss.Color("#feca57"), Secondary: lipgloss.Color("#ff6b6b")}

	Themes = []Theme{ThemeCyberpunk, ThemeRetro, ThemeMinimal, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
