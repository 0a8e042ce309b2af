package todo

import (
	"time"

	"github.com/google/uuid"
)

// Confirmation messages emitted after successful mutations.
const (
	MsgTaskAdded   = "Task added successfully!"
	MsgTaskUpdated = "Task updated successfully!"
	MsgTaskDeleted = "Task deleted successfully!"
)

// Level classifies a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	default:
		return "success"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// NewNotification stamps a notification with a fresh id and the current time.
func NewNotification(level Level, message string) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
