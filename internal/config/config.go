package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration (task queue)
	Redis RedisConfig

	// HTTP Configuration
	HTTP HTTPConfig

	// Audit log retention
	Audit AuditConfig

	// Logging Configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port        string
	CORSOrigins []string
}

// AuditConfig holds audit log retention configuration
type AuditConfig struct {
	RetentionSchedule string // cron expression for the prune job
	RetentionDays     int    // logs older than this are pruned
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	retentionDays, err := strconv.Atoi(getEnv("AUDIT_RETENTION_DAYS", "180"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "podium.sqlite"),
		},
		Redis: RedisConfig{
			Address: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		HTTP: HTTPConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		},
		Audit: AuditConfig{
			RetentionSchedule: getEnv("AUDIT_RETENTION_SCHEDULE", "0 3 * * *"),
			RetentionDays:     retentionDays,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
