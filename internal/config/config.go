// Package config loads the application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/naka-gawa/github-activity/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	// GitHub
	GitHubToken  string
	GitHubAPIURL string

	// Aggregation
	WindowDays       int
	FetchConcurrency int

	// API server
	APIHost  string
	APIPort  string
	GinMode  string
	CacheTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads the configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	windowDays, err := getEnvAsInt("WINDOW_DAYS", domain.DefaultWindowDays)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvAsInt("FETCH_CONCURRENCY", 8)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:     getEnv("GITHUB_API_URL", ""),
		WindowDays:       windowDays,
		FetchConcurrency: concurrency,
		APIHost:          getEnv("API_HOST", "localhost"),
		APIPort:          getEnv("API_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "release"),
		CacheTTL:         cacheTTL,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.WindowDays < 1 {
		return &ConfigError{Field: "WINDOW_DAYS", Message: "must be at least 1"}
	}
	if c.FetchConcurrency < 1 {
		return &ConfigError{Field: "FETCH_CONCURRENCY", Message: "must be at least 1"}
	}
	if c.CacheTTL < 0 {
		return &ConfigError{Field: "CACHE_TTL", Message: "must not be negative"}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &ConfigError{Field: "LOG_FORMAT", Message: "must be 'text' or 'json'"}
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be a duration such as 5m"}
	}
	return d, nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
