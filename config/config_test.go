package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("PICKPOST_SERVER_PORT")
		os.Unsetenv("PICKPOST_SERVER_ENVIRONMENT")
		os.Unsetenv("PICKPOST_STORE_TYPE")
		os.Unsetenv("PICKPOST_STORE_PATH")
		os.Unsetenv("PICKPOST_SMTP_ENABLED")
		os.Unsetenv("PICKPOST_SMTP_HOST")
		os.Unsetenv("PICKPOST_SMTP_FROM")
		os.Unsetenv("PICKPOST_SMTP_SENDS_PER_MINUTE")
		os.Unsetenv("PICKPOST_OPENAI_ENABLED")
		os.Unsetenv("PICKPOST_OPENAI_API_KEY")
		os.Unsetenv("PICKPOST_OPENAI_MODEL")
		os.Unsetenv("PICKPOST_LIMITS_DEFAULT_MAX_RECS")
		os.Unsetenv("PICKPOST_RATELIMIT_PER_IP")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Store.Type != "memory" {
			t.Errorf("Store.Type = %s, want memory", cfg.Store.Type)
		}
		if cfg.SMTP.Enabled {
			t.Error("SMTP.Enabled = true, want false by default")
		}
		if cfg.SMTP.Port != 587 {
			t.Errorf("SMTP.Port = %d, want 587", cfg.SMTP.Port)
		}
		if cfg.SMTP.SendsPerMinute != 60 {
			t.Errorf("SMTP.SendsPerMinute = %d, want 60", cfg.SMTP.SendsPerMinute)
		}
		if cfg.OpenAI.Model != "gpt-4o-mini" {
			t.Errorf("OpenAI.Model = %s, want gpt-4o-mini", cfg.OpenAI.Model)
		}
		if cfg.Limits.MaxUploadBytes != 25*1024*1024 {
			t.Errorf("Limits.MaxUploadBytes = %d, want 25 MB", cfg.Limits.MaxUploadBytes)
		}
		if cfg.Limits.DefaultMaxRecs != 3 {
			t.Errorf("Limits.DefaultMaxRecs = %d, want 3", cfg.Limits.DefaultMaxRecs)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PICKPOST_SERVER_PORT", "9090")
		os.Setenv("PICKPOST_SERVER_ENVIRONMENT", "production")
		os.Setenv("PICKPOST_STORE_TYPE", "sqlite")
		os.Setenv("PICKPOST_STORE_PATH", "/var/lib/pickpost/drafts.db")
		os.Setenv("PICKPOST_SMTP_ENABLED", "true")
		os.Setenv("PICKPOST_SMTP_HOST", "smtp.example.com")
		os.Setenv("PICKPOST_SMTP_FROM", "noreply@example.com")
		os.Setenv("PICKPOST_SMTP_SENDS_PER_MINUTE", "10")
		os.Setenv("PICKPOST_OPENAI_ENABLED", "true")
		os.Setenv("PICKPOST_OPENAI_API_KEY", "sk-test")
		os.Setenv("PICKPOST_OPENAI_MODEL", "gpt-4o")
		os.Setenv("PICKPOST_RATELIMIT_PER_IP", "200")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Store.Type != "sqlite" {
			t.Errorf("Store.Type = %s, want sqlite", cfg.Store.Type)
		}
		if cfg.Store.Path != "/var/lib/pickpost/drafts.db" {
			t.Errorf("Store.Path = %s, want /var/lib/pickpost/drafts.db", cfg.Store.Path)
		}
		if !cfg.SMTP.Enabled {
			t.Error("SMTP.Enabled = false, want true")
		}
		if cfg.SMTP.Host != "smtp.example.com" {
			t.Errorf("SMTP.Host = %s, want smtp.example.com", cfg.SMTP.Host)
		}
		if cfg.SMTP.SendsPerMinute != 10 {
			t.Errorf("SMTP.SendsPerMinute = %d, want 10", cfg.SMTP.SendsPerMinute)
		}
		if cfg.OpenAI.APIKey != "sk-test" {
			t.Errorf("OpenAI.APIKey = %s, want sk-test", cfg.OpenAI.APIKey)
		}
		if cfg.OpenAI.Model != "gpt-4o" {
			t.Errorf("OpenAI.Model = %s, want gpt-4o", cfg.OpenAI.Model)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation for invalid store type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PICKPOST_STORE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid store type")
		}
	})

	t.Run("fails validation when SMTP enabled without host", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PICKPOST_SMTP_ENABLED", "true")
		os.Setenv("PICKPOST_SMTP_FROM", "noreply@example.com")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for SMTP without host")
		}
	})

	t.Run("fails validation when copywriter enabled without API key", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PICKPOST_OPENAI_ENABLED", "true")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for copywriter without API key")
		}
	})
}

func TestValidate(t *testing.T) {
	// base returns a config that passes validation.
	base := func() *Config {
		return &Config{
			Store:  StoreConfig{Type: "memory"},
			Limits: LimitsConfig{DefaultMaxRecs: 3},
		}
	}

	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for invalid store type", func(t *testing.T) {
		cfg := base()
		cfg.Store.Type = "redis"

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid store type")
		}
	})

	t.Run("fails for sqlite store without path", func(t *testing.T) {
		cfg := base()
		cfg.Store = StoreConfig{Type: "sqlite", Path: ""}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for sqlite without path")
		}
	})

	t.Run("validates sqlite store with path", func(t *testing.T) {
		cfg := base()
		cfg.Store = StoreConfig{Type: "sqlite", Path: "drafts.db"}

		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid sqlite config", err)
		}
	})

	t.Run("fails when SMTP enabled without from address", func(t *testing.T) {
		cfg := base()
		cfg.SMTP = SMTPConfig{Enabled: true, Host: "smtp.example.com"}

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for SMTP without from address")
		}
	})

	t.Run("validates enabled SMTP with host and from", func(t *testing.T) {
		cfg := base()
		cfg.SMTP = SMTPConfig{Enabled: true, Host: "smtp.example.com", From: "noreply@example.com"}

		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid SMTP config", err)
		}
	})

	t.Run("fails for non-positive default recommendation cap", func(t *testing.T) {
		cfg := base()
		cfg.Limits.DefaultMaxRecs = 0

		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero default_max_recs")
		}
	})
}
