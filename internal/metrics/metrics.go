// Package metrics exports filter engine and live session activity to
// Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/filtersync/pkg/filterstate"
)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "filtersync").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "filtersync",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector implements filterstate.Observer and records live session
// activity. All methods are safe for concurrent use.
type Collector struct {
	mountsTotal    *prometheus.CounterVec
	commitsTotal   prometheus.Counter
	resetsTotal    prometheus.Counter
	queryLength    prometheus.Histogram
	activeSessions prometheus.Gauge
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	protocolErrors *prometheus.CounterVec
	patchesSent    prometheus.Counter
}

var _ filterstate.Observer = (*Collector)(nil)

// New registers the collector's metrics and returns it. Registering twice
// against the same registry panics, as promauto does.
func New(opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(cfg.Registry)

	return &Collector{
		mountsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of filter engine mounts by state source",
			ConstLabels: cfg.ConstLabels,
		}, []string{"source"}),

		commitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of filter commits",
			ConstLabels: cfg.ConstLabels,
		}),

		resetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "resets_total",
			Help:        "Total number of filter resets",
			ConstLabels: cfg.ConstLabels,
		}),

		queryLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "query_length_bytes",
			Help:        "Length of query strings written to the address bar",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(8, 2, 10),
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected live sessions",
			ConstLabels: cfg.ConstLabels,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_total",
			Help:        "Total number of session events processed",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Session event processing duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"type"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Total number of protocol errors sent to clients",
			ConstLabels: cfg.ConstLabels,
		}, []string{"code"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to clients",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// ObserveMount implements filterstate.Observer.
func (c *Collector) ObserveMount(adopted bool) {
	source := "seeded"
	if adopted {
		source = "adopted"
	}
	c.mountsTotal.WithLabelValues(source).Inc()
}

// ObserveCommit implements filterstate.Observer.
func (c *Collector) ObserveCommit(query string) {
	c.commitsTotal.Inc()
	c.queryLength.Observe(float64(len(query)))
}

// ObserveReset implements filterstate.Observer.
func (c *Collector) ObserveReset(query string) {
	c.resetsTotal.Inc()
	c.queryLength.Observe(float64(len(query)))
}

// SessionOpened increments the active session gauge.
func (c *Collector) SessionOpened() {
	c.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (c *Collector) SessionClosed() {
	c.activeSessions.Dec()
}

// RecordEvent records one processed event of the given type.
func (c *Collector) RecordEvent(eventType string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.eventsTotal.WithLabelValues(eventType, status).Inc()
	c.eventDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// RecordProtocolError records an ErrorMessage sent to a client.
func (c *Collector) RecordProtocolError(code string) {
	c.protocolErrors.WithLabelValues(code).Inc()
}

// RecordPatches records n patches sent to a client.
func (c *Collector) RecordPatches(n int) {
	c.patchesSent.Add(float64(n))
}
