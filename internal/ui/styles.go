// Package ui provides the live watch view for the active tracking session.
package ui

import (
	"punch/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds the watch view styles, initialized from the theme config.
type Styles struct {
	Title    lipgloss.Style
	Project  lipgloss.Style
	Duration lipgloss.Style
	Muted    lipgloss.Style
	Idle     lipgloss.Style
	Error    lipgloss.Style
	Frame    lipgloss.Style
}

// NewStyles creates watch view styles from a ThemeConfig, falling back to the
// defaults for any empty color.
func NewStyles(theme *config.ThemeConfig) *Styles {
	primary := colorOrDefault(theme.Primary, "#7C3AED")
	accent := colorOrDefault(theme.Accent, "#10B981")
	muted := colorOrDefault(theme.Muted, "#6B7280")

	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Project:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Duration: lipgloss.NewStyle().Foreground(accent),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Idle:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 2),
	}
}

func colorOrDefault(value, fallback string) lipgloss.Color {
	if value == "" {
		return lipgloss.Color(fallback)
	}
	return lipgloss.Color(value)
}
