// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Driver names accepted in STORAGE_DRIVER.
const (
	DriverWebdav = "webdav"
	DriverS3     = "s3"
)

// Config holds all gateway configuration.
type Config struct {
	// Server
	ListenAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Auth. Empty disables the token check.
	APIToken string

	// Storage driver ("webdav" or "s3", default: "webdav")
	StorageDriver string

	// Nextcloud (webdav driver)
	NextcloudURL      string
	NextcloudUsername string
	NextcloudPassword string
	UseEnvProxy       bool

	// S3 storage (s3 driver)
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// Requests
	RequestTimeout time.Duration
	MaxUploadSize  int64
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        envOr("LISTEN_ADDR", ":8080"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFormat:         envOr("LOG_FORMAT", "json"),
		APIToken:          envOr("API_TOKEN", ""),
		StorageDriver:     envOr("STORAGE_DRIVER", DriverWebdav),
		NextcloudURL:      envOr("NEXTCLOUD_URL", ""),
		NextcloudUsername: envOr("NEXTCLOUD_USERNAME", ""),
		NextcloudPassword: envOr("NEXTCLOUD_PASSWORD", ""),
		UseEnvProxy:       envBool("USE_ENV_PROXY", false),
		S3Endpoint:        envOr("S3_ENDPOINT", ""),
		S3Bucket:          envOr("S3_BUCKET", ""),
		S3AccessKey:       envOr("S3_ACCESS_KEY", ""),
		S3SecretKey:       envOr("S3_SECRET_KEY", ""),
		S3UseSSL:          envBool("S3_USE_SSL", false),
		RequestTimeout:    envDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxUploadSize:     envInt64("MAX_UPLOAD_SIZE", 100*1024*1024), // 100MB default
	}

	switch cfg.StorageDriver {
	case DriverWebdav:
		if cfg.NextcloudURL == "" {
			return nil, fmt.Errorf("NEXTCLOUD_URL is required")
		}
	case DriverS3:
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT is required")
		}
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
