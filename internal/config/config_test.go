package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 90, cfg.MediaThreshold)
	assert.Equal(t, 80, cfg.DocumentPromoteAt)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COURSEGATE_DB", "/tmp/cg.db")
	t.Setenv("COURSEGATE_ADDR", ":9999")
	t.Setenv("COURSEGATE_MEDIA_THRESHOLD", "75")
	t.Setenv("COURSEGATE_AUTOSAVE_INTERVAL", "10s")
	t.Setenv("COURSEGATE_REDIS_URL", "redis://localhost:6379/2")

	cfg := Load()

	assert.Equal(t, "/tmp/cg.db", cfg.DBPath)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 75, cfg.MediaThreshold)
	assert.Equal(t, 10*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
}

func TestLoad_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("COURSEGATE_MEDIA_THRESHOLD", "250")
	t.Setenv("COURSEGATE_DOCUMENT_PROMOTE_AT", "eighty")
	t.Setenv("COURSEGATE_SESSION_IDLE_TIMEOUT", "-5m")

	cfg := Load()

	assert.Equal(t, 90, cfg.MediaThreshold)
	assert.Equal(t, 80, cfg.DocumentPromoteAt)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("COURSEGATE_ADDR=:7070\n"), 0o644))
	t.Setenv("COURSEGATE_ADDR", "")
	os.Unsetenv("COURSEGATE_ADDR")

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("COURSEGATE_ADDR") })

	assert.Equal(t, ":7070", Load().Addr)
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
