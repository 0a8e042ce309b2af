package ui

import (
	"slices"
	"time"

	"github.com/adriangreen/todo-tui/internal/todo"
)

const (
	maxToasts       = 3
	defaultToastTTL = 3 * time.Second
)

// Toast is a notification shown until Expires.
type Toast struct {
	todo.Notification
	Expires time.Time
}

// Toasts is the on-screen notification stack, newest last.
type Toasts struct {
	items []Toast
	ttl   time.Duration
}

// NewToasts creates a stack whose entries live for ttl.
func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &Toasts{ttl: ttl}
}

// Notify implements todo.Notifier.
func (t *Toasts) Notify(n todo.Notification) {
	t.items = append(t.items, Toast{Notification: n, Expires: n.CreatedAt.Add(t.ttl)})
	if len(t.items) > maxToasts {
		t.items = slices.Delete(t.items, 0, len(t.items)-maxToasts)
	}
}

// Expire drops toasts whose time has passed.
func (t *Toasts) Expire(now time.Time) {
	t.items = slices.DeleteFunc(t.items, func(x Toast) bool {
		return !now.Before(x.Expires)
	})
}

// SetTTL changes the lifetime of future toasts.
func (t *Toasts) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		t.ttl = ttl
	}
}

// Items returns the live toasts, oldest first.
func (t *Toasts) Items() []Toast {
	return slices.Clone(t.items)
}

// Len returns the number of live toasts.
func (t *Toasts) Len() int {
	return len(t.items)
}
