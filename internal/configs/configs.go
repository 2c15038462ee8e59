/*
Package configs loads and validates the application configuration.

Settings come from environment variables (optionally seeded from a .env file),
with development defaults for everything a LAN deployment can run without.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backend selectors for uploaded file bytes.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// AppConfig contains all configuration parameters required to run the server.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// DataDir is the directory holding the durable JSON collections.
	DataDir string

	// Security Settings
	AllowedOrigins []string

	// Identity Database Settings. Empty DSN selects the in-memory store.
	DatabaseDSN string

	// File Storage Settings
	StorageBackend    string
	UploadDir         string
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// LoadConfig reads the application configuration from environment variables.
// It applies development defaults, performs type conversions, and validates
// settings that have no safe fallback.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	// --- Identity Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	// --- File Storage Settings ---
	cfg.StorageBackend = os.Getenv("STORAGE_BACKEND")
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StorageBackendLocal
	}

	switch cfg.StorageBackend {
	case StorageBackendLocal:
		cfg.UploadDir = os.Getenv("UPLOAD_DIR")
		if cfg.UploadDir == "" {
			cfg.UploadDir = cfg.DataDir + "/uploads"
		}

	case StorageBackendS3:
		cfg.S3BucketName = os.Getenv("S3_BUCKET_NAME")
		if cfg.S3BucketName == "" {
			return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is required for the s3 storage backend")
		}

		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT environment variable is required for the s3 storage backend")
		}

		cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID environment variable is required for S3 authentication")
		}

		cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY environment variable is required for S3 authentication")
		}

	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected %q or %q)", cfg.StorageBackend, StorageBackendLocal, StorageBackendS3)
	}

	return cfg, nil
}
