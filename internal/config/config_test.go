package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "SERVER_ADDR", "BASE_URL", "DATABASE_URL", "FETCH_TIMEOUT",
		"HALLS_FILE", "REDIS_URL", "CACHE_RETENTION_DAYS", "NOTIFY_INTERVAL",
		"SMTP_HOST", "SMTP_PORT", "SMTP_TLS", "WELCOME_EMAIL", "SITE_TITLE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":3000", cfg.ServerAddr)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.CacheRetentionDays)
	assert.Equal(t, time.Duration(0), cfg.NotifyInterval)
	assert.Equal(t, "starttls", cfg.SMTPTLS)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "Dining Watch", cfg.SiteTitle)
	assert.False(t, cfg.IsEmailEnabled())
	assert.False(t, cfg.WelcomeEmailEnabled)
	assert.True(t, cfg.IsDev())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("CACHE_RETENTION_DAYS", "7")
	t.Setenv("NOTIFY_INTERVAL", "1h")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("WELCOME_EMAIL", "1")
	t.Setenv("ENV", "production")

	cfg := Load()

	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 7, cfg.CacheRetentionDays)
	assert.Equal(t, time.Hour, cfg.NotifyInterval)
	assert.True(t, cfg.IsEmailEnabled())
	assert.True(t, cfg.WelcomeEmailEnabled)
	assert.False(t, cfg.IsDev())
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL:        "postgres://localhost:5432/diningwatch",
			FetchTimeout:       15 * time.Second,
			CacheRetentionDays: 2,
			SMTPTLS:            "starttls",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, "FETCH_TIMEOUT"},
		{"zero retention", func(c *Config) { c.CacheRetentionDays = 0 }, "CACHE_RETENTION_DAYS"},
		{"bad tls mode", func(c *Config) { c.SMTPTLS = "ssl" }, "SMTP_TLS"},
		{"smtp without from", func(c *Config) { c.SMTPHost = "smtp.example.com" }, "SMTP_FROM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
