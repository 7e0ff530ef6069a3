package config

import (
	"log/slog"
	"os"
	"strings"
)

const (
	defaultDBPath = "./data/printshop.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
	defaultLocale = "en"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	Env           string
	LogLevel      string
	// Locale is the BCP 47 tag used to format money and percentages.
	Locale string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// A missing .env is fine; production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("could not read .env", "error", err)
	}

	cfg := Config{
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getEnv("DB_PATH", defaultDBPath),
		Port:          getEnv("PORT", defaultPort),
		Env:           strings.ToLower(getEnv("APP_ENV", defaultEnv)),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Locale:        getEnv("LOCALE", defaultLocale),
	}

	if cfg.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
