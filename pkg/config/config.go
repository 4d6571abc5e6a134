package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/parse-analytics/pkg/controller"
	"github.com/platinummonkey/parse-analytics/pkg/observability"
	"github.com/platinummonkey/parse-analytics/pkg/session"
)

// Session provider kinds
const (
	SessionNone   = "none"
	SessionStatic = "static"
	SessionRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Parse server configuration
	Parse ParseConfig `yaml:"parse"`

	// Session token source
	Session SessionConfig `yaml:"session"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ParseConfig holds the Parse server coordinates
type ParseConfig struct {
	ServerURL      string        `yaml:"server_url"`
	ApplicationID  string        `yaml:"application_id"`
	ClientKey      string        `yaml:"client_key"`
	InstallationID string        `yaml:"installation_id"`
	Timeout        time.Duration `yaml:"timeout"`
}

// SessionConfig selects where session tokens come from
type SessionConfig struct {
	Provider string `yaml:"provider"` // none, static, redis
	Token    string `yaml:"token"`
	Scope    string `yaml:"scope"`

	RedisURL       string `yaml:"redis_url"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	RedisKeyPrefix string `yaml:"redis_key_prefix"`

	// Zero CacheTTL disables caching
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool   `yaml:"otel_enabled"`
	OTelEndpoint       string `yaml:"otel_endpoint"`
	OTelServiceName    string `yaml:"otel_service_name"`
	OTelServiceVersion string `yaml:"otel_service_version"`
	OTelInsecure       bool   `yaml:"otel_insecure"` // Use insecure gRPC connection
}

// DefaultConfig returns the configuration used before any file or
// environment override
func DefaultConfig() *Config {
	return &Config{
		Parse: ParseConfig{
			ServerURL: "https://api.parse.com/1",
			Timeout:   controller.DefaultTimeout,
		},
		Session: SessionConfig{
			Provider:       SessionNone,
			Scope:          session.DefaultScope,
			RedisKeyPrefix: session.DefaultKeyPrefix,
			CacheSize:      session.DefaultCacheSize,
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "parse-analytics",
			OTelServiceVersion: controller.Version,
			OTelInsecure:       true,
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file at path
// (skipped when path is empty), and PARSE_* environment variables, in that
// order. A missing installation id is generated.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if cfg.Parse.InstallationID == "" {
		cfg.Parse.InstallationID = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnv overrides cfg with environment variables
func applyEnv(cfg *Config) {
	p := &cfg.Parse
	p.ServerURL = getEnv("PARSE_SERVER_URL", p.ServerURL)
	p.ApplicationID = getEnv("PARSE_APPLICATION_ID", p.ApplicationID)
	p.ClientKey = getEnv("PARSE_CLIENT_KEY", p.ClientKey)
	p.InstallationID = getEnv("PARSE_INSTALLATION_ID", p.InstallationID)
	p.Timeout = getEnvDuration("PARSE_TIMEOUT", p.Timeout)

	s := &cfg.Session
	s.Provider = strings.ToLower(getEnv("PARSE_SESSION_PROVIDER", s.Provider))
	s.Token = getEnv("PARSE_SESSION_TOKEN", s.Token)
	s.Scope = getEnv("PARSE_SESSION_SCOPE", s.Scope)
	s.RedisURL = getEnv("PARSE_REDIS_URL", s.RedisURL)
	s.RedisPassword = getEnv("PARSE_REDIS_PASSWORD", s.RedisPassword)
	s.RedisDB = getEnvInt("PARSE_REDIS_DB", s.RedisDB)
	s.RedisKeyPrefix = getEnv("PARSE_REDIS_KEY_PREFIX", s.RedisKeyPrefix)
	s.CacheSize = getEnvInt("PARSE_SESSION_CACHE_SIZE", s.CacheSize)
	s.CacheTTL = getEnvDuration("PARSE_SESSION_CACHE_TTL", s.CacheTTL)

	o := &cfg.Observability
	o.LogLevel = getEnv("PARSE_LOG_LEVEL", o.LogLevel)
	o.MetricsEnabled = getEnvBool("PARSE_METRICS_ENABLED", o.MetricsEnabled)
	o.OTelEnabled = getEnvBool("PARSE_OTEL_ENABLED", o.OTelEnabled)
	o.OTelEndpoint = getEnv("PARSE_OTEL_ENDPOINT", o.OTelEndpoint)
	o.OTelServiceName = getEnv("PARSE_OTEL_SERVICE_NAME", o.OTelServiceName)
	o.OTelServiceVersion = getEnv("PARSE_OTEL_SERVICE_VERSION", o.OTelServiceVersion)
	o.OTelInsecure = getEnvBool("PARSE_OTEL_INSECURE", o.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate Parse config
	if c.Parse.ServerURL == "" {
		return fmt.Errorf("parse server URL is required")
	}
	if c.Parse.ApplicationID == "" {
		return fmt.Errorf("parse application id is required")
	}
	if c.Parse.Timeout <= 0 {
		return fmt.Errorf("parse timeout must be positive")
	}

	// Validate session config based on provider
	switch c.Session.Provider {
	case SessionNone, SessionStatic:
	case SessionRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis sessions")
		}
	default:
		return fmt.Errorf("invalid session provider: %s (must be none, static, or redis)", c.Session.Provider)
	}
	if c.Session.CacheTTL < 0 {
		return fmt.Errorf("session cache TTL must not be negative")
	}

	if _, err := c.Observability.Level(); err != nil {
		return err
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// Controller returns the REST controller configuration
func (p ParseConfig) Controller() controller.Config {
	return controller.Config{
		ServerURL:      p.ServerURL,
		ApplicationID:  p.ApplicationID,
		ClientKey:      p.ClientKey,
		InstallationID: p.InstallationID,
		Timeout:        p.Timeout,
	}
}

// Redis returns the Redis session provider configuration
func (s SessionConfig) Redis() session.RedisConfig {
	return session.RedisConfig{
		URL:       s.RedisURL,
		Password:  s.RedisPassword,
		DB:        s.RedisDB,
		KeyPrefix: s.RedisKeyPrefix,
	}
}

// Level parses the configured log level
func (o ObservabilityConfig) Level() (logrus.Level, error) {
	return observability.ParseLevel(o.LogLevel)
}

// OTel returns the OpenTelemetry configuration
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
