package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/todo"
)

// Fixed colors; theme colors come from config.
const (
	ColorBorder = "#555555"
	ColorText   = "#FFFFFF"
	ColorSubtle = "#666666"
)

// Styles contains all the lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	FilterOn    lipgloss.Style
	FilterOff   lipgloss.Style
	FilterSep   lipgloss.Style
	SearchLabel lipgloss.Style
	Table       lipgloss.Style
	StatusBar   lipgloss.Style
	Subtle      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style
	ToastError   lipgloss.Style
}

// NewStyles builds the styles for a theme.
func NewStyles(theme config.ThemeConfig) *Styles {
	primary := lipgloss.Color(orDefault(theme.PrimaryColor, "#7d56f4"))
	accent := lipgloss.Color(orDefault(theme.AccentColor, "#F780E2"))
	success := lipgloss.Color(orDefault(theme.SuccessColor, "#04B575"))
	errColor := lipgloss.Color(orDefault(theme.ErrorColor, "#EF4146"))
	warning := lipgloss.Color(orDefault(theme.WarningColor, "#FF9800"))

	toast := lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color(ColorText))

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorText)).
			Background(primary).
			Padding(0, 1),
		FilterOn: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(accent),
		FilterOff: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),
		FilterSep: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorBorder)),
		SearchLabel: lipgloss.NewStyle().
			Foreground(accent),
		Table: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(errColor),
		Help: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primary),

		ToastSuccess: toast.Background(success),
		ToastInfo:    toast.Background(warning),
		ToastError:   toast.Background(errColor),
	}
}

// ToastStyle returns the style for a notification level.
func (s *Styles) ToastStyle(level todo.Level) lipgloss.Style {
	switch level {
	case todo.LevelError:
		return s.ToastError
	case todo.LevelInfo:
		return s.ToastInfo
	default:
		return s.ToastSuccess
	}
}

// tableStyles highlights the selected row in the primary color.
func tableStyles(theme config.ThemeConfig) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ColorText)).
		Background(lipgloss.Color(orDefault(theme.PrimaryColor, "#7d56f4"))).
		Bold(false)
	return s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
