package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps entries in a map and rewrites a JSON file after each change.
// Values must themselves be JSON documents; they are embedded verbatim.
type FileStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	path string
}

// NewFileStore opens the store at path, loading existing entries. An empty
// path disables persistence.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{data: make(map[string][]byte), path: path}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range stored {
		s.data[k] = []byte(v)
	}
	return s, nil
}

func (s *FileStore) Store(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}
	if !json.Valid(value) {
		return fmt.Errorf("store %s: value is not JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return s.flush()
}

func (s *FileStore) Retrieve(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *FileStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := []string{}
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; every change is already on disk.
func (s *FileStore) Close() error {
	return nil
}

// flush writes through a temp file so a crash never leaves half a document.
// Must be called with the write lock held.
func (s *FileStore) flush() error {
	if s.path == "" {
		return nil
	}

	out := make(map[string]json.RawMessage, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}
