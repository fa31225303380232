package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Menu fetching
	FetchTimeout time.Duration // per-hall network timeout
	HallsFile    string        // optional YAML hall table, built-in defaults when empty

	// Daily cache
	RedisURL           string // empty: in-memory cache
	CacheRetentionDays int    // entries older than this many days are pruned

	// Dispatcher
	NotifyInterval time.Duration // in-process scheduler tick; 0 disables it

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "tls", "starttls", or "none"

	// Features
	WelcomeEmailEnabled bool

	// Site Branding
	SiteTitle string // env: SITE_TITLE, default: "Dining Watch"
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/diningwatch?sslmode=disable"),

		FetchTimeout: getDuration("FETCH_TIMEOUT", 15*time.Second),
		HallsFile:    getEnv("HALLS_FILE", ""),

		RedisURL:           getEnv("REDIS_URL", ""),
		CacheRetentionDays: getInt("CACHE_RETENTION_DAYS", 2),

		NotifyInterval: getDuration("NOTIFY_INTERVAL", 0),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		WelcomeEmailEnabled: getEnv("WELCOME_EMAIL", "") != "",

		SiteTitle: getEnv("SITE_TITLE", "Dining Watch"),
	}
}

// Validate fails fast on settings the process cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	if c.CacheRetentionDays < 1 {
		return fmt.Errorf("CACHE_RETENTION_DAYS must be at least 1, got %d", c.CacheRetentionDays)
	}
	switch c.SMTPTLS {
	case "tls", "starttls", "none":
	default:
		return fmt.Errorf("SMTP_TLS must be tls, starttls, or none, got %q", c.SMTPTLS)
	}
	if c.IsEmailEnabled() && c.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != ""
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
