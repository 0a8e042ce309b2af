package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends opens every implementation against a fresh directory.
func backends(t *testing.T) map[string]Memory {
	t.Helper()
	dir := t.TempDir()

	file, err := Open(BackendJSON, filepath.Join(dir, "state.json"))
	require.NoError(t, err)
	mem, err := Open(BackendJSON, "")
	require.NoError(t, err)
	db, err := Open(BackendBadger, filepath.Join(dir, "badger"))
	require.NoError(t, err)

	stores := map[string]Memory{"file": file, "memory-only": mem, "badger": db}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestMemoryContract(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Store(ctx, "ui/view", []byte(`{"filter":"done"}`)))
			require.NoError(t, store.Store(ctx, "ui/other", []byte(`1`)))
			require.NoError(t, store.Store(ctx, "misc", []byte(`true`)))

			got, err := store.Retrieve(ctx, "ui/view")
			require.NoError(t, err)
			assert.JSONEq(t, `{"filter":"done"}`, string(got))

			keys, err := store.List(ctx, "ui/")
			require.NoError(t, err)
			assert.Equal(t, []string{"ui/other", "ui/view"}, keys)

			all, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			require.NoError(t, store.Delete(ctx, "ui/view"))
			_, err = store.Retrieve(ctx, "ui/view")
			assert.ErrorIs(t, err, ErrKeyNotFound)
			require.NoError(t, store.Delete(ctx, "ui/view"), "deleting a missing key")

			assert.ErrorIs(t, store.Store(ctx, "", []byte(`1`)), ErrKeyEmpty)
			_, err = store.Retrieve(ctx, "")
			assert.ErrorIs(t, err, ErrKeyEmpty)
			assert.ErrorIs(t, store.Delete(ctx, ""), ErrKeyEmpty)
		})
	}
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, "ui/view", []byte(`{"query":"quis"}`)))
	require.NoError(t, first.Close())

	second, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Retrieve(ctx, "ui/view")
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"quis"}`, string(got))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStoreRejectsNonJSONValues(t *testing.T) {
	s, err := NewFileStore("")
	require.NoError(t, err)
	assert.Error(t, s.Store(context.Background(), "k", []byte("plain text")))
}

func TestBadgerStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	first, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, "ui/view", []byte(`{"filter":"todo"}`)))
	require.NoError(t, first.Close())

	second, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.Retrieve(ctx, "ui/view")
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter":"todo"}`, string(got))
}

func TestBadgerStoreHonoursCancelledContext(t *testing.T) {
	s, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Store(ctx, "k", []byte(`1`)), context.Canceled)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("sqlite", "x")
	assert.Error(t, err)
	_, err = Open(BackendBadger, "")
	assert.Error(t, err)
}

func TestHelperJSON(t *testing.T) {
	ctx := context.Background()
	h := NewHelper(must(NewFileStore("")))

	type view struct {
		Filter string `json:"filter"`
		Query  string `json:"query"`
	}

	var v view
	found, err := h.LoadOrDefault(ctx, "ui/view", &v)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, h.StoreJSON(ctx, "ui/view", view{Filter: "done", Query: "quis"}))

	var got view
	found, err = h.LoadOrDefault(ctx, "ui/view", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, view{Filter: "done", Query: "quis"}, got)

	require.NoError(t, h.StoreJSON(ctx, "ui/extra", 1))
	require.NoError(t, h.StoreJSON(ctx, "keep", 2))
	require.NoError(t, h.Clear(ctx, "ui/"))

	keys, err := h.Store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, keys)
}

func TestHelperDecodeError(t *testing.T) {
	ctx := context.Background()
	h := NewHelper(must(NewFileStore("")))
	require.NoError(t, h.Store.Store(ctx, "ui/view", []byte(`[1,2]`)))

	var v struct{ Filter string }
	_, err := h.LoadOrDefault(ctx, "ui/view", &v)
	assert.Error(t, err)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
