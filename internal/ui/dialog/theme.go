package dialog

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/adriangreen/todo-tui/internal/config"
)

// StyleFromTheme derives dialog colors from the configured theme, falling
// back to the defaults for empty entries.
func StyleFromTheme(theme config.ThemeConfig) *DialogStyle {
	style := DefaultDialogStyle()
	if theme.PrimaryColor != "" {
		style.BorderColor = lipgloss.Color(theme.PrimaryColor)
		style.ButtonColor = lipgloss.Color(theme.PrimaryColor)
	}
	if theme.AccentColor != "" {
		style.TitleColor = lipgloss.Color(theme.AccentColor)
	}
	if theme.ErrorColor != "" {
		style.ErrorColor = lipgloss.Color(theme.ErrorColor)
	}
	return style
}

// ApplyTheme restyles the manager and its active dialog.
func ApplyTheme(m *Manager, theme config.ThemeConfig) {
	m.SetStyle(StyleFromTheme(theme))
}
