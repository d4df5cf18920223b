package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecretKey is only acceptable for local development
const DefaultSecretKey = "your-super-secret-key-change-this-in-production"

// Config holds application configuration
type Config struct {
	AppEnv     string
	ServerPort string
	LogLevel   string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	SecretKey         string
	AccessTokenExpiry time.Duration

	AllowedOrigins []string

	MediaBucket         string
	MediaPublicBaseURL  string
	MediaStorageEnabled bool
	UploadMaxSize       int64
	S3Endpoint          string
	S3UsePathStyle      bool
	S3AccessKeyID       string
	S3SecretAccessKey   string
	AWSRegion           string

	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults
func Load() *Config {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	bucket := getEnv("MEDIA_BUCKET", "advice-media")
	s3Endpoint := getEnv("S3_ENDPOINT", "")
	s3AccessKeyID := getEnv("S3_ACCESS_KEY_ID", "")

	return &Config{
		AppEnv:     getEnv("APP_ENV", "dev"),
		ServerPort: getEnv("PORT", "8001"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./advice.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		SecretKey:         getEnv("SECRET_KEY", DefaultSecretKey),
		AccessTokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://127.0.0.1:3000,https://advice-app-frontend.vercel.app,https://*.vercel.app")),

		MediaBucket:         bucket,
		MediaPublicBaseURL:  mediaPublicBaseURL(bucket),
		// Without an endpoint or keys there is nothing to upload to
		MediaStorageEnabled: getEnvBool("MEDIA_STORAGE_ENABLED", s3Endpoint != "" || s3AccessKeyID != ""),
		UploadMaxSize:       10 * 1024 * 1024, // 10MiB
		S3Endpoint:          s3Endpoint,
		S3UsePathStyle:      getEnvBool("S3_USE_PATH_STYLE", false),
		S3AccessKeyID:       s3AccessKeyID,
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),

		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Dad's Advice"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
	}
}

// Validate rejects configurations that must not reach production
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must not be empty")
	}
	if c.AppEnv != "dev" && c.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be set outside the dev environment")
	}
	if c.AccessTokenExpiry <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	switch strings.ToLower(c.DatabaseType) {
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for " + c.DatabaseType)
		}
	}
	return nil
}

// mediaPublicBaseURL resolves where uploaded objects are publicly served from.
// Supabase projects expose buckets under /storage/v1/object/public/<bucket>.
func mediaPublicBaseURL(bucket string) string {
	if v := os.Getenv("MEDIA_PUBLIC_BASE_URL"); v != "" {
		return v
	}
	if supabaseURL := os.Getenv("SUPABASE_URL"); supabaseURL != "" {
		return strings.TrimRight(supabaseURL, "/") + "/storage/v1/object/public/" + bucket
	}
	return "http://localhost:8001/media/" + bucket
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
