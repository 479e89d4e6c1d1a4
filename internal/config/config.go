package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host           string
	Port           string
	AllowedOrigins []string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheBackend string
	CacheFile    string
	CacheSize    int
	CacheTTL     time.Duration

	// Storage settings for the cache file
	StorageType      string
	StorageLocalPath string
	S3Bucket         string
	S3Region         string
	AWSAccessKey     string
	AWSSecretKey     string

	// Oyez settings
	OyezBaseURL   string
	OyezTimeout   time.Duration
	OyezUserAgent string

	// Completion settings
	CompletionProvider string
	CompletionTimeout  time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiModel        string

	// Quiz settings
	VerdictMode      string
	CasesFile        string
	FetchConcurrency int

	// API settings
	APIRateLimit  int
	APIRateWindow time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "")),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/courtdle.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CacheBackend:       getEnv("CACHE_BACKEND", "file"),
		CacheFile:          getEnv("CACHE_FILE", "cases_cache.json"),
		StorageType:        getEnv("STORAGE_TYPE", "local"),
		StorageLocalPath:   getEnv("STORAGE_LOCAL_PATH", "./data"),
		S3Bucket:           getEnv("AWS_S3_BUCKET", ""),
		S3Region:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:       getEnv("AWS_SECRET_ACCESS_KEY", ""),
		OyezBaseURL:        getEnv("OYEZ_BASE_URL", "https://api.oyez.org"),
		OyezUserAgent:      getEnv("OYEZ_USER_AGENT", "courtdle-api/1.0"),
		CompletionProvider: getEnv("COMPLETION_PROVIDER", "openai"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		VerdictMode:        getEnv("VERDICT_MODE", "completion"),
		CasesFile:          getEnv("CASES_FILE", ""),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	oyezTimeout, err := strconv.Atoi(getEnv("OYEZ_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid OYEZ_TIMEOUT: %w", err)
	}
	cfg.OyezTimeout = time.Duration(oyezTimeout) * time.Second

	completionTimeout, err := strconv.Atoi(getEnv("COMPLETION_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMPLETION_TIMEOUT: %w", err)
	}
	cfg.CompletionTimeout = time.Duration(completionTimeout) * time.Second

	cfg.FetchConcurrency, err = strconv.Atoi(getEnv("FETCH_CONCURRENCY", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: %w", err)
	}

	cfg.APIRateLimit, err = strconv.Atoi(getEnv("API_RATE_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
	}

	apiRateWindow, err := strconv.Atoi(getEnv("API_RATE_WINDOW", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_WINDOW: %w", err)
	}
	cfg.APIRateWindow = time.Duration(apiRateWindow) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enumerated settings and numeric bounds.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want file or sqlite", c.CacheBackend)
	}

	switch c.StorageType {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: want local or s3", c.StorageType)
	}

	switch c.CompletionProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("invalid COMPLETION_PROVIDER %q: want openai or gemini", c.CompletionProvider)
	}

	switch c.VerdictMode {
	case "completion", "exact":
	default:
		return fmt.Errorf("invalid VERDICT_MODE %q: want completion or exact", c.VerdictMode)
	}

	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("CACHE_SIZE must be at least 1, got %d", c.CacheSize)
	}

	return nil
}

// CompletionAPIKey returns the key for the configured completion provider.
func (c *Config) CompletionAPIKey() string {
	if c.CompletionProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
