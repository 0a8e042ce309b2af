// Package memory is a small key/value store for state that outlives a
// session, such as the last filter and search query.
package memory

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key cannot be empty")
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// Memory is a byte-valued key/value store.
type Memory interface {
	Store(ctx context.Context, key string, value []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Open returns the store for backend rooted at path. For the JSON backend an
// empty path keeps everything in memory.
func Open(backend, path string) (Memory, error) {
	switch backend {
	case "", BackendJSON:
		return NewFileStore(path)
	case BackendBadger:
		if path == "" {
			return nil, fmt.Errorf("badger backend needs a directory")
		}
		return NewBadgerStore(path)
	default:
		return nil, fmt.Errorf("unknown memory backend %q", backend)
	}
}
