package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// configPathEnv points at an optional YAML file. Values from the file are
// applied over the defaults; environment variables win over both.
const configPathEnv = "INCUBATION_CONFIG"

type Config struct {
	// Supabase
	SupabaseURL            string `yaml:"supabase_url"`
	SupabasePublishableKey string `yaml:"supabase_publishable_key"`
	SupabaseJWTSecret      string `yaml:"supabase_jwt_secret"`
	SupabaseStorageBucket  string `yaml:"supabase_storage_bucket"`
	RealtimeEnabled        bool   `yaml:"realtime_enabled"`

	// Database
	DatabaseURL string `yaml:"database_url"`

	// Server
	Port               string   `yaml:"port"`
	Environment        string   `yaml:"environment"`
	BaseURL            string   `yaml:"base_url"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Workflows
	LogLevel            string `yaml:"log_level"`
	StrictNotifications bool   `yaml:"strict_notifications"`
}

func defaults() *Config {
	return &Config{
		SupabaseStorageBucket: "incubation-media",
		RealtimeEnabled:       true,
		Port:                  "8080",
		Environment:           "development",
		BaseURL:               "http://localhost:8080",
		CORSAllowedOrigins:    []string{"*"},
		LogLevel:              "info",
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.SupabaseURL = getEnv("SUPABASE_URL", c.SupabaseURL)
	c.SupabasePublishableKey = getEnv("SUPABASE_PUBLISHABLE_KEY", c.SupabasePublishableKey)
	c.SupabaseJWTSecret = getEnv("SUPABASE_JWT_SECRET", c.SupabaseJWTSecret)
	c.SupabaseStorageBucket = getEnv("SUPABASE_STORAGE_BUCKET", c.SupabaseStorageBucket)
	c.RealtimeEnabled = getEnvBool("REALTIME_ENABLED", c.RealtimeEnabled)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)

	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	if origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		c.CORSAllowedOrigins = origins
	}

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.StrictNotifications = getEnvBool("STRICT_NOTIFICATIONS", c.StrictNotifications)
}

func (c *Config) Validate() error {
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.SupabaseURL != "" && c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required when SUPABASE_URL is set")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	return nil
}

// MediaEnabled reports whether uploads and realtime broadcasts can reach Supabase.
func (c *Config) MediaEnabled() bool {
	return c.SupabaseURL != "" && c.SupabasePublishableKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
