package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Gemini        GeminiConfig
	Import        ImportConfig
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// AuthConfig points at the external auth provider. Sessions are resolved by
// forwarding request headers to it; this service never mints tokens itself.
type AuthConfig struct {
	ProviderURL   string
	SessionHeader string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// ImportConfig carries the statement-import tuning knobs. The prefix length
// and minimum text threshold are heuristics, kept configurable so they can be
// tuned without a release.
type ImportConfig struct {
	MinTextChars       int
	DuplicatePrefixLen int
	MaxUploadBytes     int64
	OCRLanguage        string
	SessionTTLMinutes  int
	SessionCapacity    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "fintrack-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			ProviderURL:   getEnv("AUTH_PROVIDER_URL", "http://localhost:3001"),
			SessionHeader: getEnv("AUTH_SESSION_HEADER", "Authorization"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Import: ImportConfig{
			MinTextChars:       getEnvAsInt("IMPORT_MIN_TEXT_CHARS", 50),
			DuplicatePrefixLen: getEnvAsInt("IMPORT_DUPLICATE_PREFIX_LEN", 20),
			MaxUploadBytes:     int64(getEnvAsInt("IMPORT_MAX_UPLOAD_BYTES", 10*1024*1024)),
			OCRLanguage:        getEnv("IMPORT_OCR_LANGUAGE", "eng"),
			SessionTTLMinutes:  getEnvAsInt("IMPORT_SESSION_TTL_MINUTES", 30),
			SessionCapacity:    getEnvAsInt("IMPORT_SESSION_CAPACITY", 1000),
		},
	}

	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	if cfg.Import.MinTextChars <= 0 {
		return nil, errors.New("IMPORT_MIN_TEXT_CHARS must be positive")
	}
	if cfg.Import.DuplicatePrefixLen <= 0 {
		return nil, errors.New("IMPORT_DUPLICATE_PREFIX_LEN must be positive")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
