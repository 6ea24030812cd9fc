package logger

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "anti-bot.log")
	log, err := New(Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)

	log.With(map[string]interface{}{"chat_id": 42}).Info("update received", map[string]interface{}{"command": "ask"})
	log.Error("send failed", errors.New("boom"), nil)
	log.Debug("hidden?", nil)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"msg":"update received"`)
	assert.Contains(t, text, `"chat_id":42`)
	assert.Contains(t, text, `"command":"ask"`)
	assert.Contains(t, text, `"error":"boom"`)
	assert.Contains(t, text, `"msg":"hidden?"`)
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	log, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)
	log.Info("quiet", nil)
	log.Warn("loud", nil)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}
