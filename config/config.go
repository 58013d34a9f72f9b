// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/i18n"
)

// Config is the root configuration structure.
type Config struct {
	AcceptParams acceptparams.Settings `yaml:"accept_params"`
	Language     string                `yaml:"language"` // "en" or "ja"
	Logging      LoggingConfig         `yaml:"logging"`
	Server       ServerConfig          `yaml:"server"`
	Metrics      MetricsConfig         `yaml:"metrics"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// ServerConfig configures the validation HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// MaxBodyBytes caps JSON request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{AcceptParams: acceptparams.BuiltinSettings()}
	cfg.Metrics.Enabled = true
	applyEnvOverrides(cfg)
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
// Environment variables in the file (${VAR}) are expanded, ACCEPTPARAMS_*
// variables override file values, and keys missing from the accept_params
// section keep their built-in values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Config{AcceptParams: acceptparams.BuiltinSettings()}
	cfg.Metrics.Enabled = true
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Apply installs cfg process-wide: the accept_params section becomes the
// default Settings and the language selects the message catalog.
func (c *Config) Apply() {
	acceptparams.SetDefaults(c.AcceptParams)
	i18n.SetLanguage(c.Language)
}

// applyEnvOverrides applies ACCEPTPARAMS_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ACCEPTPARAMS_IGNORE_UNEXPECTED"); v != "" {
		cfg.AcceptParams.IgnoreUnexpected = parseBool(v)
	}
	if v := os.Getenv("ACCEPTPARAMS_REMOVE_UNEXPECTED"); v != "" {
		cfg.AcceptParams.RemoveUnexpected = parseBool(v)
	}
	if v, ok := os.LookupEnv("ACCEPTPARAMS_IGNORE_PARAMS"); ok {
		cfg.AcceptParams.IgnoreParams = splitList(v)
	}
	if v, ok := os.LookupEnv("ACCEPTPARAMS_IGNORE_COLUMNS"); ok {
		cfg.AcceptParams.IgnoreColumns = splitList(v)
	}
	if v := os.Getenv("ACCEPTPARAMS_LANGUAGE"); v != "" {
		cfg.Language = v
	}

	// Logging
	if v := os.Getenv("ACCEPTPARAMS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ACCEPTPARAMS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Server
	if v := os.Getenv("ACCEPTPARAMS_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ACCEPTPARAMS_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = n
		}
	}

	// Metrics
	if v := os.Getenv("ACCEPTPARAMS_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}

func splitList(v string) []string {
	out := []string{}
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = "en"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "accept_params"
	}
}

func validate(cfg *Config) error {
	if cfg.AcceptParams.RemoveUnexpected && !cfg.AcceptParams.IgnoreUnexpected {
		return fmt.Errorf("accept_params.remove_unexpected requires accept_params.ignore_unexpected")
	}
	if cfg.Language != "en" && cfg.Language != "ja" {
		return fmt.Errorf("language must be 'en' or 'ja', got %q", cfg.Language)
	}
	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative")
	}
	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}
	return nil
}
