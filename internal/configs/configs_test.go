package configs

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()

	vars := []string{
		"ENVIRONMENT", "PORT", "DATA_DIR", "ALLOWED_ORIGINS", "DATABASE_URL",
		"STORAGE_BACKEND", "UPLOAD_DIR",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want %q", cfg.Environment, "development")
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "data")
	}
	if cfg.StorageBackend != StorageBackendLocal {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageBackendLocal)
	}
	if cfg.UploadDir != "data/uploads" {
		t.Errorf("UploadDir = %q, want %q", cfg.UploadDir, "data/uploads")
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_PortValidation(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr bool
	}{
		{"valid port", "9000", false},
		{"not a number", "eighty", true},
		{"privileged port", "80", true},
		{"too large", "70000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("PORT", tt.port)

			_, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_AllowedOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "http://192.168.1.10:3000, http://colan.lan , ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := []string{"http://192.168.1.10:3000", "http://colan.lan"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfig_S3RequiresSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", StorageBackendS3)
	t.Setenv("S3_BUCKET_NAME", "colan-files")
	t.Setenv("S3_ENDPOINT", "http://minio.lan:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "key")

	// Secret is still missing.
	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() error = nil, want error for missing S3 secret")
	}

	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.S3BucketName != "colan-files" || cfg.S3Endpoint != "http://minio.lan:9000" {
		t.Errorf("S3 settings = %q/%q, want bucket and endpoint preserved", cfg.S3BucketName, cfg.S3Endpoint)
	}
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() error = nil, want error for unknown backend")
	}
}
