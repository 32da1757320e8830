// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the admin HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// ComplianceInterval is how often policy compliance is re-evaluated (e.g. "60s").
	ComplianceInterval string `mapstructure:"COMPLIANCE_INTERVAL"`
	// StatsInterval is how often session statistics are recomputed (e.g. "30s").
	StatsInterval string `mapstructure:"STATS_INTERVAL"`
	// AuditRetrievalLimit caps how many audit entries the tail endpoint returns (1-1000).
	AuditRetrievalLimit int `mapstructure:"AUDIT_RETRIEVAL_LIMIT"`
	// OTLPEndpoint enables metric export when set (e.g. http://localhost:4317).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext OTLP connection for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("COMPLIANCE_INTERVAL", "60s")
	v.SetDefault("STATS_INTERVAL", "30s")
	v.SetDefault("AUDIT_RETRIEVAL_LIMIT", 100)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AuditRetrievalLimit == 0 {
		cfg.AuditRetrievalLimit = 100
	}
	if cfg.AuditRetrievalLimit < 1 || cfg.AuditRetrievalLimit > 1000 {
		return nil, errors.New("config: AUDIT_RETRIEVAL_LIMIT must be between 1 and 1000")
	}

	return &cfg, nil
}

// ComplianceEvery parses ComplianceInterval as a time.Duration. Returns 60s if unset or invalid.
func (c *Config) ComplianceEvery() time.Duration {
	d, err := time.ParseDuration(c.ComplianceInterval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// StatsEvery parses StatsInterval as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) StatsEvery() time.Duration {
	d, err := time.ParseDuration(c.StatsInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
