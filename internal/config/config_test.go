package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FILEDROP_AUTH_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "./files", cfg.Storage.FilesDir)
	assert.Equal(t, "ffmpeg", cfg.Thumbnail.FFmpegPath)
	assert.Equal(t, 10*time.Second, cfg.Thumbnail.Timeout)
	assert.False(t, cfg.Webhook.Enabled())
	assert.False(t, cfg.Mirror.Enabled())
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
}

func TestLoadRequiresAuthToken(t *testing.T) {
	t.Setenv("FILEDROP_AUTH_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FILEDROP_AUTH_TOKEN", "secret")
	t.Setenv("FILEDROP_PORT", "9999")
	t.Setenv("FILEDROP_BASE_URL", "https://files.example.com/")
	t.Setenv("FILEDROP_THUMBNAIL_TIMEOUT", "30s")
	t.Setenv("FILEDROP_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("MIRROR_ENDPOINT", "minio.internal:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	// trailing slash trimmed so URL concatenation stays clean
	assert.Equal(t, "https://files.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Thumbnail.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Origins)
	assert.True(t, cfg.Mirror.Enabled())
}

func TestStoragePaths(t *testing.T) {
	s := StorageConfig{DataDir: "/var/lib/filedrop"}
	assert.Equal(t, "/var/lib/filedrop/counter.json", s.CounterPath())
	assert.Equal(t, "/var/lib/filedrop/checksum.json", s.ChecksumPath())
}
