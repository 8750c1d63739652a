package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")

	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.SetLevel("debug")
	buf.Reset()
	l.Debug("shown", "key", "value")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "value", rec["key"])
	assert.Equal(t, slog.LevelDebug, l.Level())
}

func TestSetup_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "moviehub.log")
	l, err := Setup(path, "info")
	require.NoError(t, err)

	l.Info("started", "version", "test")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"started"`)
}

func TestNullLogger(t *testing.T) {
	l := NullLogger()
	l.Error("discarded")
	assert.NoError(t, l.Close())
}
