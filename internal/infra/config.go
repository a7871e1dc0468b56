package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. It is resolved once at process start; the storage backend
// choice derives from this snapshot in one place instead of per-call env
// branching.
type Config struct {
	AppEnv string
	Port   string

	// PublicDir roots the local storage fallback and the read-only swatch
	// catalogue (public/swatches).
	PublicDir string

	// Gemini generation settings.
	GeminiAPIKey      string
	GeminiModel       string
	GeminiImageSize   string
	GenerationTimeout time.Duration

	// S3-compatible public object store.
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKeyID   string
	S3SecretKey     string
	S3PublicBaseURL string
	S3UsePathStyle  bool

	// Supabase-style keyed storage.
	SupabaseURL        string
	SupabaseServiceKey string

	// StoragePrivateACL switches artifact URLs to the blob proxy.
	StoragePrivateACL bool
	// ReadOnlyFS marks deployments where the local fallback must not be
	// attempted.
	ReadOnlyFS bool

	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		PublicDir:         getEnv("PUBLIC_DIR", "public"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-3-pro-image-preview"),
		GeminiImageSize:   getEnv("GEMINI_IMAGE_SIZE", "1K"),
		GenerationTimeout: time.Second * time.Duration(getEnvInt("GENERATION_TIMEOUT_SECONDS", 60)),

		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:   os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		S3UsePathStyle:  getEnvBool("S3_USE_PATH_STYLE", true),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),

		StoragePrivateACL: getEnvBool("STORAGE_PRIVATE_ACL", false),
		ReadOnlyFS:        getEnvBool("READ_ONLY_FS", false),

		AllowedOrigins: splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS")),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
