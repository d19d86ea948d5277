package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	DatabaseURL     string
	ShutdownTimeout time.Duration

	// Voice assistant integration
	VoiceToolMaxBodyBytes int64
	DiscoveryResultLimit  int

	// CORS for the staff dashboard
	CORSAllowedOrigins string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Env:                   getEnv("ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		ShutdownTimeout:       getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		VoiceToolMaxBodyBytes: int64(getEnvAsInt("VOICE_TOOL_MAX_BODY_BYTES", 1<<20)),
		DiscoveryResultLimit:  getEnvAsInt("DISCOVERY_RESULT_LIMIT", 3),
		CORSAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
