package todo

import "fmt"

// Session runs the add/edit/delete workflow on top of a Store. Each method
// runs to completion; callers are expected to invoke them from one goroutine
// (the UI event loop).
type Session struct {
	store    *Store
	notifier Notifier
	modal    Modal
}

// NewSession creates a session over store. notifier may be nil.
func NewSession(store *Store, notifier Notifier) *Session {
	return &Session{store: store, notifier: notifier}
}

// Store returns the underlying store.
func (s *Session) Store() *Store {
	return s.store
}

// Modal returns the current dialog state.
func (s *Session) Modal() Modal {
	return s.modal
}

// Draft returns the open draft, if any.
func (s *Session) Draft() (Task, bool) {
	if !s.modal.IsOpen() {
		return Task{}, false
	}
	return s.modal.Draft, true
}

// SetDraftTitle edits the open draft's title. It is a no-op when idle.
func (s *Session) SetDraftTitle(title string) {
	if s.modal.IsOpen() {
		s.modal.Draft.Title = title
	}
}

// SetDraftCompleted edits the open draft's status. It is a no-op when idle.
func (s *Session) SetDraftCompleted(completed bool) {
	if s.modal.IsOpen() {
		s.modal.Draft.Completed = completed
	}
}

// StartAdd opens the add dialog with an empty draft carrying the next free id.
func (s *Session) StartAdd() error {
	if s.modal.IsOpen() {
		return fmt.Errorf("start add: %w (%s)", ErrModalBusy, s.modal.Kind)
	}
	s.modal = Modal{
		Kind:  ModalAdding,
		Draft: Task{ID: s.store.PeekID(), Title: "", Completed: false},
	}
	return nil
}

// ConfirmAdd commits draft and closes the add dialog. A draft id that is not
// positive or already taken is replaced by a freshly allocated one.
func (s *Session) ConfirmAdd(draft Task) error {
	if s.modal.Kind != ModalAdding {
		return fmt.Errorf("confirm add: %w", ErrNoModal)
	}
	if draft.ID <= 0 || s.store.Has(draft.ID) {
		draft.ID = s.store.NextID()
	}
	s.store.Add(draft)
	s.modal = Modal{}
	s.notify(LevelSuccess, MsgTaskAdded)
	return nil
}

// CancelAdd discards the add draft.
func (s *Session) CancelAdd() error {
	if s.modal.Kind != ModalAdding {
		return fmt.Errorf("cancel add: %w", ErrNoModal)
	}
	s.modal = Modal{}
	return nil
}

// StartEdit opens the edit dialog on a copy of task, so cancelling leaves the
// stored task untouched.
func (s *Session) StartEdit(task Task) error {
	if s.modal.IsOpen() {
		return fmt.Errorf("start edit: %w (%s)", ErrModalBusy, s.modal.Kind)
	}
	s.modal = Modal{Kind: ModalEditing, Draft: task}
	return nil
}

// ConfirmEdit writes the draft's title and status back and closes the edit
// dialog. Editing a task that was removed meanwhile is a silent no-op.
func (s *Session) ConfirmEdit(draft Task) error {
	if s.modal.Kind != ModalEditing {
		return fmt.Errorf("confirm edit: %w", ErrNoModal)
	}
	s.store.Update(draft.ID, PatchFrom(draft))
	s.modal = Modal{}
	s.notify(LevelSuccess, MsgTaskUpdated)
	return nil
}

// CancelEdit discards the edit draft.
func (s *Session) CancelEdit() error {
	if s.modal.Kind != ModalEditing {
		return fmt.Errorf("cancel edit: %w", ErrNoModal)
	}
	s.modal = Modal{}
	return nil
}

// Commit confirms whichever dialog is open using the session's own draft.
func (s *Session) Commit() error {
	switch s.modal.Kind {
	case ModalAdding:
		return s.ConfirmAdd(s.modal.Draft)
	case ModalEditing:
		return s.ConfirmEdit(s.modal.Draft)
	}
	return fmt.Errorf("commit: %w", ErrNoModal)
}

// Cancel closes whichever dialog is open without mutating the store.
func (s *Session) Cancel() error {
	switch s.modal.Kind {
	case ModalAdding:
		return s.CancelAdd()
	case ModalEditing:
		return s.CancelEdit()
	}
	return fmt.Errorf("cancel: %w", ErrNoModal)
}

// DeleteTask removes the task immediately. There is no confirmation step.
func (s *Session) DeleteTask(id int) {
	s.store.Remove(id)
	s.notify(LevelSuccess, MsgTaskDeleted)
}

// SelectFilter changes the status selection.
func (s *Session) SelectFilter(f Filter) {
	s.store.SetFilter(f)
}

// SetSearch changes the search query.
func (s *Session) SetSearch(q string) {
	s.store.SetQuery(q)
}

func (s *Session) notify(level Level, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(NewNotification(level, message))
}
