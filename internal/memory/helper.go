package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Helper stores JSON documents in a Memory.
type Helper struct {
	Store Memory
}

// NewHelper wraps store.
func NewHelper(store Memory) *Helper {
	return &Helper{Store: store}
}

// StoreJSON marshals value under key.
func (h *Helper) StoreJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return h.Store.Store(ctx, key, data)
}

// RetrieveJSON decodes the document under key into value.
func (h *Helper) RetrieveJSON(ctx context.Context, key string, value any) error {
	data, err := h.Store.Retrieve(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// LoadOrDefault is RetrieveJSON that treats a missing key as success, leaving
// value untouched. It reports whether the key was found.
func (h *Helper) LoadOrDefault(ctx context.Context, key string, value any) (bool, error) {
	err := h.RetrieveJSON(ctx, key, value)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Clear removes every key with the given prefix.
func (h *Helper) Clear(ctx context.Context, prefix string) error {
	keys, err := h.Store.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := h.Store.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}
