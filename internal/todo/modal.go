package todo

import "errors"

var (
	// ErrModalBusy is returned when a dialog is opened while another one is open.
	ErrModalBusy = errors.New("another dialog is already open")
	// ErrNoModal is returned when confirming or cancelling a dialog that is not open.
	ErrNoModal = errors.New("dialog is not open")
)

// ModalKind tags which dialog, if any, is open.
type ModalKind int

const (
	ModalIdle ModalKind = iota
	ModalAdding
	ModalEditing
)

func (k ModalKind) String() string {
	switch k {
	case ModalAdding:
		return "adding"
	case ModalEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Modal is the dialog state. Only one draft can exist at a time because the
// kind and the draft live in a single value.
type Modal struct {
	Kind  ModalKind
	Draft Task
}

// IsOpen reports whether a dialog is open.
func (m Modal) IsOpen() bool {
	return m.Kind != ModalIdle
}
