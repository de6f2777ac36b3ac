// Package config loads the application configuration from environment
// variables into an explicit struct. Components receive their slice of
// the configuration at construction time; nothing reads the environment
// after startup.
package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string
	DataDir    string

	// Primary model provider (OpenAI-compatible).
	ModelAPIKey  string
	ModelBaseURL string
	// Optional fallback provider tried exactly once on primary failure.
	FallbackAPIKey  string
	FallbackBaseURL string

	// Model names per task tier.
	SimpleModel  string
	ComplexModel string

	// Hosted scrape provider. When unset, pages are fetched directly.
	ScrapeBaseURL string
	ScrapeAPIKey  string
	RenderPages   bool

	TokenBudget    int
	MaxItems       int
	MaxConcurrency int
}

// Load builds a Config from environment variables with defaults.
func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DataDir:    getEnv("DATA_DIR", ""),

		ModelAPIKey:     getEnv("MODEL_API_KEY", ""),
		ModelBaseURL:    getEnv("MODEL_BASE_URL", ""),
		FallbackAPIKey:  getEnv("FALLBACK_MODEL_API_KEY", ""),
		FallbackBaseURL: getEnv("FALLBACK_MODEL_BASE_URL", ""),

		SimpleModel:  getEnv("SIMPLE_MODEL", "gpt-4o-mini"),
		ComplexModel: getEnv("COMPLEX_MODEL", "gpt-4o"),

		ScrapeBaseURL: getEnv("SCRAPE_BASE_URL", ""),
		ScrapeAPIKey:  getEnv("SCRAPE_API_KEY", ""),
		RenderPages:   getEnvAsBool("RENDER_PAGES", false),

		TokenBudget:    getEnvAsInt("TOKEN_BUDGET", 8000),
		MaxItems:       getEnvAsInt("MAX_ITEMS", 10),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 4),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}
