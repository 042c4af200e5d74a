package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the filedrop API.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Thumbnail ThumbnailConfig
	Webhook   WebhookConfig
	Mirror    MirrorConfig
	Metrics   MetricsConfig
	CORS      CORSConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig locates the object tree and the persisted ledgers.
type StorageConfig struct {
	FilesDir string
	DataDir  string
}

// CounterPath returns the location of the download-count ledger.
func (s StorageConfig) CounterPath() string {
	return filepath.Join(s.DataDir, "counter.json")
}

// ChecksumPath returns the location of the checksum cache.
func (s StorageConfig) ChecksumPath() string {
	return filepath.Join(s.DataDir, "checksum.json")
}

// AuthConfig holds the shared secret required by mutating endpoints.
type AuthConfig struct {
	Token string
}

// ThumbnailConfig controls the ffmpeg still-frame extraction.
type ThumbnailConfig struct {
	FFmpegPath string
	Timeout    time.Duration
}

// WebhookConfig points at an optional Discord-compatible webhook.
type WebhookConfig struct {
	URL  string
	Name string
}

// Enabled reports whether notifications should be sent.
func (w WebhookConfig) Enabled() bool { return w.URL != "" }

// MirrorConfig describes an optional S3-compatible replica of object content.
type MirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether mirroring is configured.
func (m MirrorConfig) Enabled() bool { return m.Endpoint != "" }

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:        getString("FILEDROP_HOST", "0.0.0.0"),
			Port:        getInt("FILEDROP_PORT", 8080),
			BaseURL:     strings.TrimRight(getString("FILEDROP_BASE_URL", "http://localhost:8080"), "/"),
			ReadTimeout: getDuration("FILEDROP_READ_TIMEOUT", 15*time.Second),
			// WriteTimeout stays 0: range streams are paced by the client
			// and must be allowed to outlive any fixed deadline.
			WriteTimeout: getDuration("FILEDROP_WRITE_TIMEOUT", 0),
			IdleTimeout:  getDuration("FILEDROP_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			FilesDir: getString("FILEDROP_FILES_DIR", "./files"),
			DataDir:  getString("FILEDROP_DATA_DIR", "./data"),
		},
		Auth: AuthConfig{
			Token: getString("FILEDROP_AUTH_TOKEN", ""),
		},
		Thumbnail: ThumbnailConfig{
			FFmpegPath: getString("FILEDROP_FFMPEG_PATH", "ffmpeg"),
			Timeout:    getDuration("FILEDROP_THUMBNAIL_TIMEOUT", 10*time.Second),
		},
		Webhook: WebhookConfig{
			URL:  getString("FILEDROP_WEBHOOK_URL", ""),
			Name: getString("FILEDROP_WEBHOOK_NAME", "filedrop"),
		},
		Mirror: MirrorConfig{
			Endpoint:  getString("MIRROR_ENDPOINT", ""),
			AccessKey: getString("MIRROR_ACCESS_KEY", ""),
			SecretKey: getString("MIRROR_SECRET_KEY", ""),
			Bucket:    getString("MIRROR_BUCKET", "filedrop"),
			UseSSL:    getBool("MIRROR_USE_SSL", false),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILEDROP_METRICS_PATH", "/metrics"),
		},
		CORS: CORSConfig{
			Origins: splitList(getString("FILEDROP_CORS_ORIGINS", "*")),
		},
	}

	if cfg.Auth.Token == "" {
		return Config{}, fmt.Errorf("FILEDROP_AUTH_TOKEN must be set")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
