package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports debounced changes to a set of config files. Parent
// directories are watched so editors that replace files on save are seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]struct{}
	dirs     []string
	events   chan struct{}
	errors   chan error
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	watching bool
	closed   bool
}

// NewWatcher creates a watcher for the given files.
func NewWatcher(ctx context.Context, paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	files := make(map[string]struct{}, len(paths))
	seenDirs := make(map[string]struct{})
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	wctx, cancel := context.WithCancel(ctx)
	return &Watcher{
		fsw:    fsw,
		files:  files,
		dirs:   dirs,
		events: make(chan struct{}, 1),
		errors: make(chan error, 1),
		ctx:    wctx,
		cancel: cancel,
	}, nil
}

// Start begins watching. Bursts of writes closer together than debounce
// produce a single event.
func (w *Watcher) Start(debounce time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher stopped")
	}
	if w.watching {
		return fmt.Errorf("watcher already started")
	}
	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.watching = true

	go w.loop(debounce)
	return nil
}

func (w *Watcher) loop(debounce time.Duration) {
	defer close(w.events)
	defer close(w.errors)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isWatched(ev.Name) || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			select {
			case w.events <- struct{}{}:
			default:
				// an event is already pending
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) isWatched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = filepath.Clean(name)
	}
	_, ok := w.files[abs]
	return ok
}

// Events delivers one value per debounced burst of changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Errors delivers fsnotify errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops watching and releases the fsnotify handle. It is safe to call twice.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cancel()
	w.watching = false
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}
