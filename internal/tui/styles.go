package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/promptcraft/internal/config"
)

// truncate shortens text to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

type palette struct {
	primary   lipgloss.Color
	secondary lipgloss.Color
	success   lipgloss.Color
	error     lipgloss.Color
	muted     lipgloss.Color
	text      lipgloss.Color
	highlight lipgloss.Color
}

var palettes = map[string]palette{
	config.ThemeDark: {
		primary:   "#7C3AED",
		secondary: "#06B6D4",
		success:   "#10B981",
		error:     "#EF4444",
		muted:     "#6B7280",
		text:      "#F9FAFB",
		highlight: "#FBBF24",
	},
	config.ThemeLight: {
		primary:   "#6D28D9",
		secondary: "#0E7490",
		success:   "#047857",
		error:     "#B91C1C",
		muted:     "#6B7280",
		text:      "#1F2937",
		highlight: "#B45309",
	},
}

var (
	// Colors
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorSuccess   lipgloss.Color
	colorError     lipgloss.Color
	colorMuted     lipgloss.Color
	colorText      lipgloss.Color
	colorHighlight lipgloss.Color

	styleLogo      lipgloss.Style
	styleTitle     lipgloss.Style
	styleSubtitle  lipgloss.Style
	styleBox       lipgloss.Style
	styleStatusBar lipgloss.Style
	styleSelected  lipgloss.Style
	styleTab       lipgloss.Style
	styleTabActive lipgloss.Style
)

func init() {
	applyTheme(config.ThemeLight)
}

// applyTheme switches every style to the named palette.
func applyTheme(theme string) {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[config.ThemeLight]
	}

	colorPrimary = p.primary
	colorSecondary = p.secondary
	colorSuccess = p.success
	colorError = p.error
	colorMuted = p.muted
	colorText = p.text
	colorHighlight = p.highlight

	styleLogo = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	styleTitle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	styleSubtitle = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	styleStatusBar = lipgloss.NewStyle().
		Foreground(colorMuted)

	styleSelected = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	styleTab = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 1)

	styleTabActive = lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorPrimary).
		Bold(true).
		Padding(0, 1)
}
