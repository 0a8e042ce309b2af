// Package dialog renders modal forms over the task table.
package dialog

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrDialogOpen is returned when opening a dialog while another is showing.
var ErrDialogOpen = errors.New("a dialog is already open")

// DialogResult represents the result of a dialog operation
type DialogResult int

const (
	// DialogResultNone indicates no result yet
	DialogResultNone DialogResult = iota
	// DialogResultCancel indicates the dialog was cancelled
	DialogResultCancel
	// DialogResultConfirm indicates the dialog was confirmed
	DialogResultConfirm
)

// ShortcutHint represents an instructional footer entry.
type ShortcutHint struct {
	Key   string
	Label string
}

// Dialog is the interface all dialog types must implement
type Dialog interface {
	Init() tea.Cmd
	// HandleKey processes a key and reports whether the dialog finished.
	HandleKey(msg tea.KeyMsg) (DialogResult, tea.Cmd)
	View() string
	Title() string
	SetStyle(style *DialogStyle)
	SetWidth(width int)
}

// ResultProvider exposes the value a dialog produced when it was confirmed.
type ResultProvider interface {
	DialogResultValue() any
}

// DialogStyle contains styling information for dialogs
type DialogStyle struct {
	Border          lipgloss.Border
	BorderColor     lipgloss.Color
	TitleColor      lipgloss.Color
	TextColor       lipgloss.Color
	ButtonColor     lipgloss.Color
	ButtonTextColor lipgloss.Color
	MutedColor      lipgloss.Color
	ErrorColor      lipgloss.Color
}

// DefaultDialogStyle returns the built-in dialog colors.
func DefaultDialogStyle() *DialogStyle {
	return &DialogStyle{
		Border:          lipgloss.RoundedBorder(),
		BorderColor:     lipgloss.Color("#6D98BA"),
		TitleColor:      lipgloss.Color("#EEEEEE"),
		TextColor:       lipgloss.Color("#DDDDDD"),
		ButtonColor:     lipgloss.Color("#6D98BA"),
		ButtonTextColor: lipgloss.Color("#000000"),
		MutedColor:      lipgloss.Color("#7D7D7D"),
		ErrorColor:      lipgloss.Color("#F7768E"),
	}
}

// BaseDialog implements common functionality for all dialog types
type BaseDialog struct {
	TitleText   string
	Style       *DialogStyle
	width       int
	footerHints []ShortcutHint
}

// NewBaseDialog creates a new base dialog
func NewBaseDialog(title string, width int) BaseDialog {
	return BaseDialog{
		TitleText: title,
		Style:     DefaultDialogStyle(),
		width:     width,
	}
}

// Title returns the dialog's title
func (d BaseDialog) Title() string {
	return d.TitleText
}

// SetStyle replaces the dialog colors.
func (d *BaseDialog) SetStyle(style *DialogStyle) {
	if style != nil {
		d.Style = style
	}
}

// SetWidth sets the outer width including the border.
func (d *BaseDialog) SetWidth(width int) {
	if width > 0 {
		d.width = width
	}
}

// Width returns the outer width.
func (d BaseDialog) Width() int {
	return d.width
}

// SetFooterHints replaces the footer shortcuts shown beneath the dialog.
func (d *BaseDialog) SetFooterHints(hints ...ShortcutHint) {
	d.footerHints = d.footerHints[:0]
	for _, h := range hints {
		if h.Key != "" && h.Label != "" {
			d.footerHints = append(d.footerHints, h)
		}
	}
}

// FooterHints returns a copy of the configured hints.
func (d BaseDialog) FooterHints() []ShortcutHint {
	return append([]ShortcutHint(nil), d.footerHints...)
}

// RenderBorder frames content with the title on top and the footer hints below.
func (d BaseDialog) RenderBorder(content string) string {
	inner := d.width - 4
	if inner < 10 {
		inner = 10
	}

	var parts []string
	if d.TitleText != "" {
		parts = append(parts, lipgloss.NewStyle().
			Bold(true).
			Foreground(d.Style.TitleColor).
			Render(d.TitleText), "")
	}
	parts = append(parts, strings.TrimRight(content, "\n"))
	if footer := d.renderFooter(); footer != "" {
		parts = append(parts, "", footer)
	}

	return lipgloss.NewStyle().
		Border(d.Style.Border).
		BorderForeground(d.Style.BorderColor).
		Foreground(d.Style.TextColor).
		Padding(0, 1).
		Width(inner + 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (d BaseDialog) renderFooter() string {
	if len(d.footerHints) == 0 {
		return ""
	}
	keyStyle := lipgloss.NewStyle().Foreground(d.Style.ButtonColor).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(d.Style.MutedColor)

	parts := make([]string, 0, len(d.footerHints))
	for _, h := range d.footerHints {
		parts = append(parts, keyStyle.Render(h.Key)+" "+labelStyle.Render(h.Label))
	}
	return strings.Join(parts, "  ")
}

// Callback is invoked after the dialog closes. value is nil unless the
// dialog was confirmed and implements ResultProvider.
type Callback func(result DialogResult, value any) tea.Cmd

// Manager shows at most one dialog at a time.
type Manager struct {
	active   Dialog
	callback Callback
	width    int
	Style    *DialogStyle
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{Style: DefaultDialogStyle()}
}

// Open shows d. It fails with ErrDialogOpen when a dialog is already showing.
func (m *Manager) Open(d Dialog, cb Callback) (tea.Cmd, error) {
	if d == nil {
		return nil, errors.New("nil dialog")
	}
	if m.active != nil {
		return nil, ErrDialogOpen
	}
	d.SetStyle(m.Style)
	if m.width > 0 {
		d.SetWidth(dialogWidth(m.width))
	}
	m.active = d
	m.callback = cb
	return d.Init(), nil
}

// Close drops the active dialog without running its callback.
func (m *Manager) Close() {
	m.active = nil
	m.callback = nil
}

// Active returns the showing dialog, or nil.
func (m *Manager) Active() Dialog {
	return m.active
}

// HasDialog reports whether a dialog is showing.
func (m *Manager) HasDialog() bool {
	return m.active != nil
}

// SetTerminalWidth resizes the active and future dialogs.
func (m *Manager) SetTerminalWidth(width int) {
	m.width = width
	if m.active != nil && width > 0 {
		m.active.SetWidth(dialogWidth(width))
	}
}

// SetStyle restyles the active and future dialogs.
func (m *Manager) SetStyle(style *DialogStyle) {
	if style == nil {
		return
	}
	m.Style = style
	if m.active != nil {
		m.active.SetStyle(style)
	}
}

// HandleKey routes a key to the active dialog. When the dialog finishes it is
// removed before the callback runs, so the callback may open another one.
func (m *Manager) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if m.active == nil {
		return nil
	}

	result, cmd := m.active.HandleKey(msg)
	if result == DialogResultNone {
		return cmd
	}

	d, cb := m.active, m.callback
	m.Close()

	if cb == nil {
		return cmd
	}
	var value any
	if result == DialogResultConfirm {
		if p, ok := d.(ResultProvider); ok {
			value = p.DialogResultValue()
		}
	}
	return tea.Batch(cmd, cb(result, value))
}

// View renders the active dialog.
func (m *Manager) View() string {
	if m.active == nil {
		return ""
	}
	return m.active.View()
}

func dialogWidth(termWidth int) int {
	w := termWidth - 8
	if w > 60 {
		w = 60
	}
	if w < 30 {
		w = 30
	}
	return w
}
