package config

import (
	"fmt"
	"os"
)

// Config holds application configuration
type Config struct {
	Port           string
	StoreBackend   string // "postgres" or "memory"
	DBConn         string
	LogLevel       string
	JWTSecret      string
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SenderEmail    string
	ServiceDesk    string
	MetricsRefresh string // cron spec for the balance-gauge refresh job
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		StoreBackend:   getEnv("STORE_BACKEND", "postgres"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=bank password=bank dbname=bank sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "no-reply@btbank.example"),
		ServiceDesk:    getEnv("SERVICE_DESK_EMAIL", ""),
		MetricsRefresh: getEnv("METRICS_REFRESH", "@every 1m"),
	}

	if cfg.StoreBackend != "postgres" && cfg.StoreBackend != "memory" {
		return nil, fmt.Errorf("STORE_BACKEND must be postgres or memory, got %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "postgres" && cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
