package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/filtersync/internal/config"
	"github.com/vango-dev/filtersync/internal/metrics"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

// Config holds live server settings.
type Config struct {
	// Address is the host:port to listen on.
	Address string

	// Defaults is the initial filter state of every session.
	Defaults querycodec.Record

	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout is the maximum time for the initial handshake.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// CheckOrigin validates the websocket Origin header. Nil accepts
	// same-origin requests only (gorilla's default).
	CheckOrigin func(r *http.Request) bool

	// Metrics, when set, observes every engine and session.
	Metrics *metrics.Collector

	// MetricsHandler, when set, is served at /metrics.
	MetricsHandler http.Handler

	// TracerName names the OpenTelemetry tracer. Default: "filtersync".
	TracerName string

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:          config.DefaultAddress,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		MaxMessageSize:   config.DefaultMaxMessageSize,
		TracerName:       "filtersync",
	}
}

// FromFile derives a server Config from the loaded file configuration.
func FromFile(cfg *config.Config) (*Config, error) {
	out := DefaultConfig()
	out.Address = cfg.Address
	out.Defaults = cfg.Defaults.Clone()
	if cfg.Session.MaxMessageSize > 0 {
		out.MaxMessageSize = cfg.Session.MaxMessageSize
	}
	d, err := cfg.HandshakeTimeout()
	if err != nil {
		return nil, err
	}
	out.HandshakeTimeout = d
	return out, nil
}

func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	out := *c
	if out.Address == "" {
		out.Address = def.Address
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = def.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = def.WriteTimeout
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = def.HandshakeTimeout
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = def.ShutdownTimeout
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = def.MaxMessageSize
	}
	if out.TracerName == "" {
		out.TracerName = def.TracerName
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
