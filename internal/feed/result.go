package feed

import "github.com/adriangreen/todo-tui/internal/todo"

// Result is the outcome of one load: either Tasks or Err.
type Result struct {
	Tasks []todo.Task
	Err   error
}

// Success wraps a fetched list.
func Success(tasks []todo.Task) Result {
	return Result{Tasks: tasks}
}

// Failure wraps a fetch error.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK reports whether the load succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// LoadState tracks the load as seen by the UI.
type LoadState int

const (
	Loading LoadState = iota
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// StateOf maps a result to its terminal state.
func StateOf(r Result) LoadState {
	if r.OK() {
		return Loaded
	}
	return Failed
}
