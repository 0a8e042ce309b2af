package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriangreen/todo-tui/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFileLoaderFormats(t *testing.T) {
	for name, body := range map[string]string{
		"array":   samplePayload,
		"wrapped": `{"tasks": ` + samplePayload + `}`,
	} {
		t.Run(name, func(t *testing.T) {
			loader := &FileLoader{Path: writeFile(t, body)}

			res := loader.Load(context.Background())
			require.True(t, res.OK(), "%v", res.Err)
			require.Len(t, res.Tasks, 3)
			assert.Equal(t, "extra", res.Tasks[2].Description)
		})
	}
}

func TestFileLoaderErrors(t *testing.T) {
	missing := &FileLoader{Path: filepath.Join(t.TempDir(), "nope.json")}
	res := missing.Load(context.Background())
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Err, os.ErrNotExist)

	noTasks := &FileLoader{Path: writeFile(t, `{"todos": []}`)}
	_, err := noTasks.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPayload)

	badShape := &FileLoader{Path: writeFile(t, `[{"id": "one", "title": "x", "completed": false}]`)}
	_, err = badShape.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPayload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&FileLoader{Path: writeFile(t, samplePayload)}).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPicksSource(t *testing.T) {
	cfg := config.Default()

	src, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Client{}, src)

	cfg.Feed.URL = "file:///tmp/todos.json"
	src, err = New(cfg, nil)
	require.NoError(t, err)
	require.IsType(t, &FileLoader{}, src)
	assert.Equal(t, "/tmp/todos.json", src.(*FileLoader).Path)

	cfg.Feed.URL = "file:tasks.json"
	src, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "tasks.json", src.(*FileLoader).Path)

	cfg.Feed.URL = "file://"
	_, err = New(cfg, nil)
	assert.Error(t, err)

	cfg.Feed.URL = "testdata/todos.json"
	src, err = New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "testdata/todos.json", src.(*FileLoader).Path)

	cfg.Feed.URL = "ftp://example.test/todos"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
