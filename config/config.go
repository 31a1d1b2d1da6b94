package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	SMTP      SMTPConfig
	OpenAI    OpenAIConfig
	Limits    LimitsConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig holds draft persistence configuration
type StoreConfig struct {
	Type string `mapstructure:"type"` // "memory" or "sqlite"
	Path string `mapstructure:"path"` // sqlite database file
}

// SMTPConfig holds outbound mail transport configuration
type SMTPConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	From           string `mapstructure:"from"`
	FromName       string `mapstructure:"from_name"`
	SendsPerMinute int    `mapstructure:"sends_per_minute"`
}

// OpenAIConfig holds the optional AI copywriter configuration
type OpenAIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// LimitsConfig holds upload and matching limits
type LimitsConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	DefaultMaxRecs int   `mapstructure:"default_max_recs"`
}

// RateLimitConfig holds HTTP rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pickpost/")

	v.SetEnvPrefix("PICKPOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.path", "pickpost.db")

	// SMTP defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.sends_per_minute", 60)

	// OpenAI defaults
	v.SetDefault("openai.enabled", false)
	v.SetDefault("openai.model", "gpt-4o-mini")

	// Limits defaults
	v.SetDefault("limits.max_upload_bytes", int64(25*1024*1024)) // 25 MB
	v.SetDefault("limits.default_max_recs", 3)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.Type != "memory" && config.Store.Type != "sqlite" {
		return fmt.Errorf("store type must be 'memory' or 'sqlite', got: %s", config.Store.Type)
	}
	if config.Store.Type == "sqlite" && config.Store.Path == "" {
		return fmt.Errorf("store path is required when store type is 'sqlite'")
	}

	if config.SMTP.Enabled {
		if config.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required when SMTP is enabled (set PICKPOST_SMTP_HOST)")
		}
		if config.SMTP.From == "" {
			return fmt.Errorf("SMTP from address is required when SMTP is enabled (set PICKPOST_SMTP_FROM)")
		}
	}

	if config.OpenAI.Enabled && config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required when the copywriter is enabled (set PICKPOST_OPENAI_API_KEY)")
	}

	if config.Limits.DefaultMaxRecs <= 0 {
		return fmt.Errorf("default_max_recs must be positive, got: %d", config.Limits.DefaultMaxRecs)
	}

	return nil
}
