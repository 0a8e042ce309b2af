package ui

import (
	"context"

	"github.com/adriangreen/todo-tui/internal/memory"
)

const (
	viewStatePrefix = "ui/"
	viewStateKey    = viewStatePrefix + "view"
)

// ViewState is what the table remembers between runs. Tasks are never saved.
type ViewState struct {
	Filter     string `json:"filter"`
	Query      string `json:"query,omitempty"`
	SelectedID int    `json:"selectedId,omitempty"`
}

// LoadViewState reads the saved view. ok is false when nothing was saved.
func LoadViewState(ctx context.Context, h *memory.Helper) (state ViewState, ok bool, err error) {
	if h == nil {
		return ViewState{}, false, nil
	}
	ok, err = h.LoadOrDefault(ctx, viewStateKey, &state)
	return state, ok, err
}

// SaveViewState writes the view for the next run.
func SaveViewState(ctx context.Context, h *memory.Helper, state ViewState) error {
	if h == nil {
		return nil
	}
	return h.StoreJSON(ctx, viewStateKey, state)
}

// ClearViewState forgets every saved view setting.
func ClearViewState(ctx context.Context, h *memory.Helper) error {
	if h == nil {
		return nil
	}
	return h.Clear(ctx, viewStatePrefix)
}

// viewState captures the model's current view.
func (m Model) viewState() ViewState {
	s := ViewState{
		Filter: m.store.Filter().Key(),
		Query:  m.store.Query(),
	}
	if t, ok := m.selectedTask(); ok {
		s.SelectedID = t.ID
	}
	return s
}

// saveViewState persists the view, logging rather than failing.
func (m Model) saveViewState() {
	if m.state == nil {
		return
	}
	if err := SaveViewState(m.ctx, m.state, m.viewState()); err != nil {
		m.logger.Warn("save view state", "err", err)
	}
}
