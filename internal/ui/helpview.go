package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

const helpTitle = "Task List Manager Help"

// helpSection groups bindings under a heading in the help overlay.
type helpSection struct {
	name     string
	bindings []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keyMap
	return []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}},
		{"Task Operations", []key.Binding{k.Add, k.Edit, k.Delete, k.Refresh}},
		{"Filter & Search", []key.Binding{k.Filter, k.FilterAll, k.FilterToDo, k.FilterDone, k.Search, k.Back}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

// renderHelp renders the help overlay from the live key map, so rebound keys
// show up here too.
func (m Model) renderHelp() string {
	helpWidth := 64
	if m.width > 0 && m.width < helpWidth+4 {
		helpWidth = m.width - 4
	}
	if helpWidth < 30 {
		helpWidth = 30
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.cfg.Theme.PrimaryColor)).
		Width(helpWidth).
		Align(lipgloss.Center)
	headingStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.cfg.Theme.AccentColor))

	var b strings.Builder
	b.WriteString(titleStyle.Render(helpTitle))
	b.WriteString("\n\n")

	for _, sec := range m.helpSections() {
		b.WriteString(headingStyle.Render(sec.name))
		b.WriteString("\n")
		bindings := enabled(sec.bindings)
		for i := 0; i < len(bindings); i += 2 {
			if i+1 < len(bindings) {
				b.WriteString(formatTableRow(bindings[i], bindings[i+1], helpWidth))
			} else {
				b.WriteString(formatCompactKey(bindings[i], helpWidth))
			}
		}
		b.WriteString("\n")
	}

	prompt := fmt.Sprintf("Press '%s' or 'esc' to close help", m.keyMap.Help.Help().Key)
	b.WriteString(m.styles.Subtle.Width(helpWidth).Align(lipgloss.Center).Render(prompt))

	box := m.styles.Help.Render(b.String())
	return lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(box)
}

func enabled(bindings []key.Binding) []key.Binding {
	out := make([]key.Binding, 0, len(bindings))
	for _, b := range bindings {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

var helpKeyStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#222222")).
	Foreground(lipgloss.Color(ColorText)).
	Padding(0, 1).
	Bold(true)

// formatCompactKey formats a single binding on its own line.
func formatCompactKey(b key.Binding, width int) string {
	h := b.Help()
	line := fmt.Sprintf("%s - %s", helpKeyStyle.Render(h.Key), h.Desc)
	return lipgloss.NewStyle().Width(width).Render(line) + "\n"
}

// formatTableRow formats two bindings side by side.
func formatTableRow(left, right key.Binding, width int) string {
	half := (width - 4) / 2
	lh, rh := left.Help(), right.Help()

	leftCol := fmt.Sprintf("%s - %s", helpKeyStyle.Render(lh.Key), lh.Desc)
	rightCol := fmt.Sprintf("%s - %s", helpKeyStyle.Render(rh.Key), rh.Desc)

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).PaddingRight(2).Render(leftCol),
		lipgloss.NewStyle().Width(half).Render(rightCol))
	return row + "\n"
}
