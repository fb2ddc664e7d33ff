package lgr

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdobak/go-xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestErrorAttrCarriesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: replaceAttr}))

	logger.Error("failed", slog.Any("error", xerrors.New("boom")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	errAttr, ok := record["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errAttr["msg"])
	assert.NotEmpty(t, errAttr["trace"])
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bgr.log")
	logger, closer := New(Options{Level: "info", File: path})

	logger.Debug("hidden")
	logger.Info("model loaded", slog.String("model", "graph.pb"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"model loaded"`)
	assert.NotContains(t, string(data), "hidden")
}
