package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestParseFormatter(t *testing.T) {
	assert.Equal(t, log.JSONFormatter, ParseFormatter("json"))
	assert.Equal(t, log.LogfmtFormatter, ParseFormatter(" logfmt "))
	assert.Equal(t, log.TextFormatter, ParseFormatter("text"))
	assert.Equal(t, log.TextFormatter, ParseFormatter(""))
}

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Level: "warn", Writer: &buf, Prefix: "todo"})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("fetch failed", "status", 503)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "status=503")
	assert.Contains(t, out, "todo")
}

func TestNewJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "todo.log")
	logger, closeFn, err := New(Options{Level: "debug", Format: "json", Path: path})
	require.NoError(t, err)

	logger.Debug("task added", "id", 201)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "task added", entry["msg"])
	assert.EqualValues(t, 201, entry["id"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	assert.Equal(t, log.FatalLevel, logger.GetLevel())
}
