package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"

	"github.com/adriangreen/todo-tui/internal/config"
)

// KeyMap defines the keybindings for the TUI
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Task operations
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// Narrowing
	Search     key.Binding
	Filter     key.Binding
	FilterAll  key.Binding
	FilterToDo key.Binding
	FilterDone key.Binding
	Back       key.Binding

	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "first row"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "last row"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "edit task"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x/del", "delete task"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		FilterAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		FilterToDo: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "to do"),
		),
		FilterDone: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "done"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// NewKeyMap creates a KeyMap from configuration, falling back to defaults for missing keys
func NewKeyMap(cfg *config.Config) KeyMap {
	km := DefaultKeyMap()
	if cfg == nil || len(cfg.KeyBindings) == 0 {
		return km
	}

	// override replaces a binding's primary key; extra keys (enter, delete,
	// ctrl+c) keep working.
	override := func(b *key.Binding, name, desc string, extra ...string) {
		k, ok := cfg.KeyBindings[name]
		if !ok || k == "" {
			return
		}
		help := k
		if len(extra) > 0 {
			help = k + "/" + extra[0]
		}
		*b = key.NewBinding(
			key.WithKeys(append([]string{k}, extra...)...),
			key.WithHelp(help, desc),
		)
	}

	override(&km.Quit, "quit", "quit", "ctrl+c")
	override(&km.Help, "help", "toggle help")
	override(&km.Add, "add", "add task")
	override(&km.Edit, "edit", "edit task", "enter")
	override(&km.Delete, "delete", "delete task", "delete")
	override(&km.Search, "search", "search")
	override(&km.Filter, "filter", "cycle filter")
	override(&km.Refresh, "refresh", "reload")

	return km
}

// ShortHelp returns a short help text for the status bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Search, k.Filter, k.Help, k.Quit}
}

// FullHelp returns the full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Add, k.Edit, k.Delete, k.Refresh},
		{k.Search, k.Back, k.Filter, k.FilterAll, k.FilterToDo, k.FilterDone},
		{k.Help, k.Quit},
	}
}

// tableKeyMap hands the navigation bindings to the table. Half-page moves are
// disabled because their default keys clash with task operations.
func tableKeyMap(k KeyMap) table.KeyMap {
	off := key.NewBinding(key.WithDisabled())
	return table.KeyMap{
		LineUp:       k.Up,
		LineDown:     k.Down,
		PageUp:       k.PageUp,
		PageDown:     k.PageDown,
		HalfPageUp:   off,
		HalfPageDown: off,
		GotoTop:      k.Top,
		GotoBottom:   k.Bottom,
	}
}
