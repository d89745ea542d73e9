// Package config loads domainsctl settings from an optional YAML file and
// DOMAINS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/domains-client/pkg/logging"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOMAINS_"

// Config is the resolved CLI configuration.
type Config struct {
	Endpoint   string        `yaml:"endpoint"`
	UserAgent  string        `yaml:"user_agent"`
	Profile    string        `yaml:"profile"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	PageSize   int           `yaml:"page_size"`

	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// RedisConfig enables the shared throttle state and response cache.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// MetricsConfig configures the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserAgent: "domainsctl/0.1.0",
		Timeout:   30 * time.Second,
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// Load returns the default configuration overlaid with the YAML file at path
// (skipped when path is empty) and then with DOMAINS_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}

	str("ENDPOINT", &cfg.Endpoint)
	str("USER_AGENT", &cfg.UserAgent)
	str("PROFILE", &cfg.Profile)
	dur("TIMEOUT", &cfg.Timeout)
	num("MAX_RETRIES", &cfg.MaxRetries)
	dur("CACHE_TTL", &cfg.CacheTTL)
	num("PAGE_SIZE", &cfg.PageSize)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	num("REDIS_DB", &cfg.Redis.DB)
	str("LOG_LEVEL", &cfg.Log.Level)
	flag("LOG_PRETTY", &cfg.Log.Pretty)
	str("METRICS_ADDR", &cfg.Metrics.Addr)

	return errors.Join(errs...)
}

// Validate checks the settings that do not depend on a service call.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required (--endpoint or %sENDPOINT)", EnvPrefix)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", c.MaxRetries)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("page_size must be >= 0 (got %d)", c.PageSize)
	}
	if _, err := logging.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
