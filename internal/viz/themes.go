package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme colors the live view. Plot lists one color per plotted series.
type Theme struct {
	Name   string
	Accent lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
	Warn   lipgloss.Color
	Plot   []asciigraph.AnsiColor
}

var (
	ThemeLab = Theme{
		Name:   "lab",
		Accent: lipgloss.Color("86"),
		Text:   lipgloss.Color("252"),
		Muted:  lipgloss.Color("245"),
		Warn:   lipgloss.Color("203"),
		Plot:   []asciigraph.AnsiColor{asciigraph.Aqua, asciigraph.HotPink, asciigraph.Gold},
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Accent: lipgloss.Color("#00ff00"),
		Text:   lipgloss.Color("#88ff88"),
		Muted:  lipgloss.Color("#005500"),
		Warn:   lipgloss.Color("#ffff00"),
		Plot:   []asciigraph.AnsiColor{asciigraph.Lime, asciigraph.Green, asciigraph.Yellow},
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Accent: lipgloss.Color("#ffffff"),
		Text:   lipgloss.Color("#cccccc"),
		Muted:  lipgloss.Color("#888888"),
		Warn:   lipgloss.Color("#ffaa00"),
		Plot:   []asciigraph.AnsiColor{asciigraph.White, asciigraph.Silver, asciigraph.Gray},
	}

	Themes = []Theme{ThemeLab, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
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
