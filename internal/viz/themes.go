package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the canvas and the stats panel.
type Theme struct {
	Name    string
	Bodies  lipgloss.Color
	Sources lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:    "deep-space",
		Bodies:  lipgloss.Color("#00ffff"),
		Sources: lipgloss.Color("#ffd700"),
		Accent:  lipgloss.Color("#ff00ff"),
		Muted:   lipgloss.Color("#666688"),
	}

	ThemePhosphor = Theme{
		Name:    "phosphor",
		Bodies:  lipgloss.Color("#00ff00"),
		Sources: lipgloss.Color("#88ff88"),
		Accent:  lipgloss.Color("#ffff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemePaper = Theme{
		Name:    "paper",
		Bodies:  lipgloss.Color("#ffffff"),
		Sources: lipgloss.Color("#cccccc"),
		Accent:  lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
	}

	Themes = []Theme{ThemeDeepSpace, ThemePhosphor, ThemePaper}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDeepSpace
}

// NextTheme returns the theme after t, wrapping around.
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
