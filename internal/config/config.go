package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the server and CLI.
type Config struct {
	DBPath  string
	Addr    string
	LogMode string

	// RedisURL enables the shared SCORM snapshot cache. Empty keeps the
	// cache in process memory.
	RedisURL    string
	SnapshotTTL time.Duration

	// APIURL is the remote server used by `replay --remote`.
	APIURL string

	MediaThreshold    int
	DocumentPromoteAt int

	AutosaveInterval   time.Duration
	SessionIdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dbPath := "coursegate.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".coursegate", "coursegate.db")
	}
	return Config{
		DBPath:             dbPath,
		Addr:               ":8080",
		LogMode:            "dev",
		SnapshotTTL:        24 * time.Hour,
		APIURL:             "http://localhost:8080",
		MediaThreshold:     90,
		DocumentPromoteAt:  80,
		AutosaveInterval:   30 * time.Second,
		SessionIdleTimeout: 30 * time.Minute,
	}
}

// LoadDotEnv loads variables from path (".env" when empty) without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or invalid values.
func Load() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("COURSEGATE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("COURSEGATE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("COURSEGATE_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("COURSEGATE_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("COURSEGATE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	applyPercentEnv(&cfg.MediaThreshold, "COURSEGATE_MEDIA_THRESHOLD")
	applyPercentEnv(&cfg.DocumentPromoteAt, "COURSEGATE_DOCUMENT_PROMOTE_AT")
	applyDurationEnv(&cfg.SnapshotTTL, "COURSEGATE_SNAPSHOT_TTL")
	applyDurationEnv(&cfg.AutosaveInterval, "COURSEGATE_AUTOSAVE_INTERVAL")
	applyDurationEnv(&cfg.SessionIdleTimeout, "COURSEGATE_SESSION_IDLE_TIMEOUT")

	return cfg
}

func applyPercentEnv(dst *int, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 100 {
		return
	}
	*dst = n
}

func applyDurationEnv(dst *time.Duration, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return
	}
	*dst = d
}
