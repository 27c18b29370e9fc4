// Package config reads the MINETRACK_* environment variables. The CLI
// layers these between its flags and the active profile.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // MINETRACK_DATABASE_URL (required by Load)
	Workspace   string // MINETRACK_WORKSPACE (default "default")
	NATSURL     string // MINETRACK_NATS_URL (optional, empty = no events)

	// Export settings
	ExportInterval   time.Duration // MINETRACK_EXPORT_INTERVAL (0 = one-shot)
	ExportS3Bucket   string        // MINETRACK_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // MINETRACK_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // MINETRACK_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // MINETRACK_EXPORT_S3_KEY (default "minetrack/backup.jsonl")
	ExportFile       string        // MINETRACK_EXPORT_FILE (enables local file export when set)
}

// FromEnv reads the environment without requiring any variable to be set,
// so callers with other configuration sources (flags, profiles) can treat
// it as one layer of their precedence order.
func FromEnv() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("MINETRACK_DATABASE_URL"),
		Workspace:        envOrDefault("MINETRACK_WORKSPACE", "default"),
		NATSURL:          os.Getenv("MINETRACK_NATS_URL"),
		ExportS3Bucket:   os.Getenv("MINETRACK_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("MINETRACK_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("MINETRACK_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("MINETRACK_EXPORT_S3_KEY", "minetrack/backup.jsonl"),
		ExportFile:       os.Getenv("MINETRACK_EXPORT_FILE"),
	}

	if intervalStr := os.Getenv("MINETRACK_EXPORT_INTERVAL"); intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("MINETRACK_EXPORT_INTERVAL: %w", err)
		}
		c.ExportInterval = d
	}

	return c, nil
}

// Load is FromEnv plus the requirement that a database URL is configured,
// for callers with no other configuration source.
func Load() (*Config, error) {
	c, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("MINETRACK_DATABASE_URL is required")
	}
	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
