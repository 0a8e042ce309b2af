// Package todo holds the in-memory task list, the status filter and the
// add/edit/delete workflow that drives the task table.
package todo

import "fmt"

// Status labels shown for the completed flag.
const (
	StatusToDo = "To Do"
	StatusDone = "Done"
)

// Task is a single to-do record as served by the demo feed.
type Task struct {
	ID          int    `json:"id"`
	UserID      int    `json:"userId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

// Status returns the display label for the task's completed flag.
func (t Task) Status() string {
	if t.Completed {
		return StatusDone
	}
	return StatusToDo
}

func (t Task) String() string {
	return fmt.Sprintf("#%d %s [%s]", t.ID, t.Title, t.Status())
}

// Patch lists the fields an edit replaces. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// PatchFrom builds a patch carrying the editable fields of t (title and status).
func PatchFrom(t Task) Patch {
	title := t.Title
	completed := t.Completed
	return Patch{Title: &title, Completed: &completed}
}

func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}
