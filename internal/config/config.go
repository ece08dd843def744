package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL    string
	Port           string
	LogLevel       string
	LogFormat      string
	PrometheusPort string
	MigrationsPath string

	AdminUser     string
	AdminPassword string

	TelegramToken       string
	TelegramAdminChatID int64
	DigestInterval      time.Duration

	OTLPEndpoint string
	ServiceName  string
}

// Load loads configuration from environment variables. Values from the given
// env files (default ".env") fill in variables that are not already set; a
// missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		AdminUser:      os.Getenv("ADMIN_USER"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:    getEnvOrDefault("SERVICE_NAME", "wedding"),
	}

	// Required environment variables
	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if (cfg.AdminUser == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("ADMIN_USER and ADMIN_PASSWORD must be set together")
	}

	if cfg.TelegramToken != "" {
		raw := os.Getenv("TELEGRAM_ADMIN_CHAT_ID")
		if raw == "" {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_CHAT_ID environment variable is required when TELEGRAM_TOKEN is set")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramAdminChatID = id
	}

	interval, err := time.ParseDuration(getEnvOrDefault("DIGEST_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("DIGEST_INTERVAL must be positive, got %s", interval)
	}
	cfg.DigestInterval = interval

	return cfg, nil
}

// AdminEnabled reports whether the admin API is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPassword != ""
}

// TelegramEnabled reports whether the admin bot should start.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
