package app

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL string // Required: base URL of the portal API

	StateFile     string        // Optional: path to the SQLite session state file (default: ~/.config/portal/state.db)
	MasterKeyFile string        // Optional: path to the refresh-token sealing key (default: ~/.config/portal/master.key)
	Env           string        // Environment (dev, staging, prod) (default: dev)
	LogLevel      string        // Log level (debug, info, warn, error) (default: info)
	LogFormat     string        // Log format (json, text) (default: text)
	HTTPTimeout   time.Duration // Per-request timeout (default: 30s)
	RateLimit     float64       // Optional: max requests per second against the API (0 = unlimited)
	RateBurst     int           // Optional: burst allowance for the rate limit (default: 1)
}

func LoadConfig() Config {
	// A .env beside the binary is a convenience for development; absent is
	// fine.
	_ = godotenv.Load()

	return Config{
		APIBaseURL:    os.Getenv("PORTAL_API_URL"),
		StateFile:     getEnvOrDefault("PORTAL_STATE_FILE", defaultConfigPath("state.db")),
		MasterKeyFile: getEnvOrDefault("PORTAL_MASTER_KEY_FILE", defaultConfigPath("master.key")),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
		HTTPTimeout:   getEnvDurationOrDefault("PORTAL_HTTP_TIMEOUT", 30*time.Second),
		RateLimit:     getEnvFloatOrDefault("PORTAL_RATE_LIMIT", 0),
		RateBurst:     getEnvIntOrDefault("PORTAL_RATE_BURST", 1),
	}
}

func defaultConfigPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", "portal", name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are read as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
