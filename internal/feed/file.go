package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/logging"
	"github.com/adriangreen/todo-tui/internal/todo"
)

// Source produces the task list. *Client and *FileLoader implement it.
type Source interface {
	Load(ctx context.Context) Result
}

// New picks the source for the configured feed URL: file:// URLs and bare
// paths read a local snapshot, anything else is fetched over HTTP.
func New(cfg *config.Config, logger *log.Logger) (Source, error) {
	raw := strings.TrimSpace(cfg.Feed.URL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewClient(cfg, logger), nil
	case "file":
		path := u.Path
		if path == "" {
			// file:tasks.json has no slashes and parses as opaque.
			path = u.Opaque
		}
		if path == "" {
			return nil, fmt.Errorf("feed url %q has no path", raw)
		}
		return &FileLoader{Path: path, Logger: logger}, nil
	case "":
		return &FileLoader{Path: raw, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
}

// FileLoader reads a saved copy of the feed from disk. The file holds either
// the feed's array or an object with a "tasks" array.
type FileLoader struct {
	Path   string
	Logger *log.Logger
}

// Fetch reads and validates the snapshot.
func (f *FileLoader) Fetch(ctx context.Context) ([]todo.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("read %s: %w", f.Path, ErrBodyTooLarge)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Tasks json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if wrapped.Tasks == nil {
			return nil, fmt.Errorf("%w: object has no tasks array", ErrInvalidPayload)
		}
		data = wrapped.Tasks
	}

	tasks, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	f.logger().Debug("read tasks file", "path", f.Path, "count", len(tasks))
	return tasks, nil
}

// Load runs Fetch and folds the outcome into a Result.
func (f *FileLoader) Load(ctx context.Context) Result {
	tasks, err := f.Fetch(ctx)
	if err != nil {
		return Failure(err)
	}
	return Success(tasks)
}

func (f *FileLoader) logger() *log.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return logging.Discard()
}
