// Package config loads runtime settings from the environment and, optionally,
// a TOML file. Environment variables always win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds process-wide settings.
type Config struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	// MaskedKeywords are argument keys whose values are redacted before
	// handler parameters are logged.
	MaskedKeywords []string `toml:"masked_keywords"`

	EventDBPath   string        `toml:"event_db_path"`
	FlushInterval time.Duration `toml:"flush_interval"`

	HTTPAddr  string `toml:"http_addr"`
	RedisAddr string `toml:"redis_addr"`

	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`

	RetryMaxAttempts int           `toml:"retry_max_attempts"`
	RetryInterval    time.Duration `toml:"retry_interval"`
}

// Default returns development defaults.
func Default() *Config {
	return &Config{
		Env:              EnvDevelopment,
		LogLevel:         "INFO",
		MaskedKeywords:   []string{"password", "token", "secret"},
		EventDBPath:      "./data/events.db",
		FlushInterval:    10 * time.Second,
		HTTPAddr:         ":8080",
		ServiceName:      "statesaga-demo",
		RetryMaxAttempts: 3,
		RetryInterval:    3 * time.Second,
	}
}

// Load returns Default overridden by environment variables.
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile decodes the TOML file at path on top of Default, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %q: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// IsDevelopment reports whether verbose diagnostics (such as changed-field
// lists in state update descriptions) should be produced.
func (c *Config) IsDevelopment() bool {
	return !strings.EqualFold(c.Env, EnvProduction)
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) applyEnv() {
	c.Env = getEnv("APP_ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("LOGGER_MASKED_KEYWORDS"); v != "" {
		c.MaskedKeywords = splitList(v)
	}
	c.EventDBPath = getEnv("EVENT_DB_PATH", c.EventDBPath)
	c.FlushInterval = getDuration("FLUSH_INTERVAL", c.FlushInterval)
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.ServiceName = getEnv("OTEL_SERVICE_NAME", c.ServiceName)
	c.RetryMaxAttempts = getInt("RETRY_MAX_ATTEMPTS", c.RetryMaxAttempts)
	c.RetryInterval = getDuration("RETRY_INTERVAL", c.RetryInterval)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: ignoring invalid integer", "key", key, "value", v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config: ignoring invalid duration", "key", key, "value", v)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
