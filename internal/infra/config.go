package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	AllowedOrigins   []string
	FalAPIKey        string
	FalBaseURL       string
	FalModel         string
	HFAPIToken       string
	HFBaseURL        string
	HFModel          string
	StorageDriver    string
	StoragePath      string
	StorageBaseURL   string
	SupabaseURL      string
	SupabaseKey      string
	SupabaseBucket   string
	ListDefaultLimit int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// Storage driver identifiers accepted by STORAGE_DRIVER.
const (
	StorageDriverFilesystem = "filesystem"
	StorageDriverSupabase   = "supabase"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		FalAPIKey:        os.Getenv("FAL_API_KEY"),
		FalBaseURL:       getEnv("FAL_BASE_URL", "https://fal.run"),
		FalModel:         getEnv("FAL_MODEL", "fal-ai/flux/dev"),
		HFAPIToken:       os.Getenv("HF_API_TOKEN"),
		HFBaseURL:        getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFModel:          getEnv("HF_MODEL", "black-forest-labs/FLUX.1-schnell"),
		StorageDriver:    getEnv("STORAGE_DRIVER", StorageDriverFilesystem),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseBucket:   getEnv("SUPABASE_BUCKET", "generations"),
		ListDefaultLimit: getEnvInt("LIST_DEFAULT_LIMIT", 24),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StorageDriver {
	case StorageDriverFilesystem, StorageDriverSupabase:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.StorageDriver == StorageDriverSupabase {
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase storage driver")
		}
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
