package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port        string
	MongoURI    string
	RedisURL    string
	JWTSecret   string
	Environment string

	// GhanaNLP provider configuration
	GhanaNLPAPIKey  string
	GhanaNLPBaseURL string
	NLPTimeout      time.Duration
	NLPRatePerSec   float64

	// Edge rate limiting (requests per window per IP)
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Supported conversation languages
	SupportedLanguages []string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		MongoURI:    getEnv("MONGODB_URI", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		GhanaNLPAPIKey:  getEnv("GHANA_NLP_API_KEY", ""),
		GhanaNLPBaseURL: getEnv("GHANA_NLP_BASE_URL", "https://translation-api.ghananlp.org"),
		NLPTimeout:      getDurationEnv("NLP_TIMEOUT", 30*time.Second),
		NLPRatePerSec:   getFloatEnv("NLP_RATE_PER_SEC", 5),

		RateLimitMax:    getIntEnv("RATE_LIMIT_MAX", 100),
		RateLimitWindow: getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),

		SupportedLanguages: getListEnv("SUPPORTED_LANGUAGES", []string{"en", "tw", "ee", "dag"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
