package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")
	t.Setenv("MEDIA_BUCKET", "")
	t.Setenv("MEDIA_PUBLIC_BASE_URL", "")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	if cfg.AccessTokenExpiry != 30*time.Minute {
		t.Errorf("AccessTokenExpiry = %v, want 30m", cfg.AccessTokenExpiry)
	}
	if cfg.UploadMaxSize != 10*1024*1024 {
		t.Errorf("UploadMaxSize = %d, want 10MiB", cfg.UploadMaxSize)
	}
	want := "https://proj.supabase.co/storage/v1/object/public/advice-media"
	if cfg.MediaPublicBaseURL != want {
		t.Errorf("MediaPublicBaseURL = %q, want %q", cfg.MediaPublicBaseURL, want)
	}
	if len(cfg.AllowedOrigins) != 4 {
		t.Errorf("expected 4 default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("MEDIA_PUBLIC_BASE_URL", "https://cdn.example/media")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg := Load()

	if cfg.AccessTokenExpiry != 45*time.Minute {
		t.Errorf("AccessTokenExpiry = %v, want 45m", cfg.AccessTokenExpiry)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.MediaPublicBaseURL != "https://cdn.example/media" {
		t.Errorf("MediaPublicBaseURL = %q", cfg.MediaPublicBaseURL)
	}
	if !cfg.S3UsePathStyle {
		t.Error("S3UsePathStyle should be true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "dev with default secret",
			cfg:     Config{AppEnv: "dev", SecretKey: DefaultSecretKey, AccessTokenExpiry: time.Minute, DatabaseType: "sqlite"},
			wantErr: false,
		},
		{
			name:    "production with default secret",
			cfg:     Config{AppEnv: "production", SecretKey: DefaultSecretKey, AccessTokenExpiry: time.Minute},
			wantErr: true,
		},
		{
			name:    "postgres without url",
			cfg:     Config{AppEnv: "dev", SecretKey: "s", AccessTokenExpiry: time.Minute, DatabaseType: "postgres"},
			wantErr: true,
		},
		{
			name:    "zero expiry",
			cfg:     Config{AppEnv: "dev", SecretKey: "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMediaStorageEnabled(t *testing.T) {
	t.Setenv("MEDIA_STORAGE_ENABLED", "")
	t.Setenv("S3_ENDPOINT", "")
	t.Setenv("S3_ACCESS_KEY_ID", "")
	if Load().MediaStorageEnabled {
		t.Error("storage should be off without endpoint or keys")
	}

	t.Setenv("S3_ENDPOINT", "https://proj.supabase.co/storage/v1/s3")
	if !Load().MediaStorageEnabled {
		t.Error("an endpoint should enable storage")
	}

	t.Setenv("MEDIA_STORAGE_ENABLED", "false")
	if Load().MediaStorageEnabled {
		t.Error("explicit false should win")
	}
}
