package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// APIKeyEnvVars lists the variables holding the Gemini API key, in precedence order.
// The second name is the client-exposed variant used by web front ends.
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "NEXT_PUBLIC_GEMINI_API_KEY"}

type Config struct {
	DatabaseURL  string
	Port         string
	HistoryLimit int
	LogLevel     slog.Level
}

func Load() *Config {
	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		Port:         getEnv("PORT", "8081"),
		HistoryLimit: getEnvAsInt("SEARCH_HISTORY_LIMIT", 50),
		LogLevel:     parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// ResolveAPIKey returns the first non-empty value among APIKeyEnvVars.
func ResolveAPIKey(lookup func(string) string) string {
	for _, key := range APIKeyEnvVars {
		if value := lookup(key); value != "" {
			return value
		}
	}
	return ""
}

// APIKey reads the key from the process environment on every call.
func APIKey() string {
	return ResolveAPIKey(os.Getenv)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
