package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

func TestLoadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gemini-flash", cfg.Preferences.DefaultModel)
	assert.True(t, cfg.ShouldRequireApproval())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.Models, again.Models)
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `models:
  - name: local
    provider: ollama
    model_id: llama3
proposals:
  ttl: 5m
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Preferences.DefaultModel)
	assert.Equal(t, domain.ConflictReject, cfg.Proposals.OnConflict)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Sessions.Dir)
	assert.Equal(t, "5m0s", cfg.GetProposalTTL().String())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [\n"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(EnvConfigPath, want)
	assert.Equal(t, want, NewFileLoader("").Path())
	assert.Equal(t, "/explicit.yaml", NewFileLoader("/explicit.yaml").Path())
}
