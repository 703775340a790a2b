package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/filtersync/internal/errors"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "filtersync.json"

	// DefaultAddress is the default listen address of the live server.
	DefaultAddress = "localhost:8080"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"

	// DefaultMetricsNamespace prefixes every exported metric.
	DefaultMetricsNamespace = "filtersync"

	// DefaultMaxMessageSize bounds a single websocket message.
	DefaultMaxMessageSize = 64 * 1024

	// DefaultHandshakeTimeout bounds the wait for a ClientHello.
	DefaultHandshakeTimeout = "10s"
)

// Config represents the complete filtersync.json configuration.
type Config struct {
	// Address is the host:port the live server listens on.
	Address string `json:"address,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// Defaults is the initial filter state of every live session.
	Defaults querycodec.Record `json:"defaults"`

	// Session contains websocket session settings.
	Session SessionConfig `json:"session,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SessionConfig contains websocket session settings.
type SessionConfig struct {
	// MaxMessageSize is the read limit for one message, in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty"`

	// HandshakeTimeout is how long to wait for the ClientHello (e.g. "10s").
	HandshakeTimeout string `json:"handshakeTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled mounts /metrics and records engine activity.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// envOverrides holds the environment variables that take precedence over the
// file. Unset variables leave the file value alone.
type envOverrides struct {
	Address          string `env:"FILTERSYNC_ADDRESS"`
	LogLevel         string `env:"FILTERSYNC_LOG_LEVEL"`
	Defaults         string `env:"FILTERSYNC_DEFAULTS"`
	Metrics          *bool  `env:"FILTERSYNC_METRICS"`
	MetricsNamespace string `env:"FILTERSYNC_METRICS_NAMESPACE"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Address:  DefaultAddress,
		LogLevel: DefaultLogLevel,
		Session: SessionConfig{
			MaxMessageSize:   DefaultMaxMessageSize,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for filtersync.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or rely on FILTERSYNC_* environment variables")
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON with flat scalar defaults")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadFromDir resolves the effective configuration for dir: the file if
// present (defaults otherwise), then environment overrides, then validation.
func LoadFromDir(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if err != nil {
		if Exists(dir) {
			return nil, err
		}
		cfg = New()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays FILTERSYNC_* environment variables onto c.
// FILTERSYNC_DEFAULTS is a query string, e.g. "page=1&sort=name".
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(fmt.Errorf("parse env: %w", err))
	}

	if o.Address != "" {
		c.Address = o.Address
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Defaults != "" {
		c.Defaults = querycodec.DecodeQuery(o.Defaults)
	}
	if o.Metrics != nil {
		c.Metrics.Enabled = *o.Metrics
	}
	if o.MetricsNamespace != "" {
		c.Metrics.Namespace = o.MetricsNamespace
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Session.MaxMessageSize == 0 {
		c.Session.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Session.HandshakeTimeout == "" {
		c.Session.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("address must not be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("logLevel must be one of debug, info, warn, error").
			Wrap(err)
	}
	if c.Session.MaxMessageSize < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("session.maxMessageSize must not be negative")
	}
	if _, err := c.HandshakeTimeout(); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("session.handshakeTimeout is not a duration").
			Wrap(err)
	}
	if !validNamespace(c.Metrics.Namespace) {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("metrics.namespace may only contain letters, digits and underscores")
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.ToLower(c.LogLevel)))
	return lvl, err
}

// HandshakeTimeout returns Session.HandshakeTimeout parsed.
func (c *Config) HandshakeTimeout() (time.Duration, error) {
	if c.Session.HandshakeTimeout == "" {
		return time.ParseDuration(DefaultHandshakeTimeout)
	}
	return time.ParseDuration(c.Session.HandshakeTimeout)
}

func validNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	for i, r := range ns {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// filtersync.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigInvalid).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
