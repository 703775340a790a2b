package filterstate

import "log/slog"

// Observer receives engine lifecycle notifications. Implementations must be
// safe for concurrent use when engines run on several goroutines.
type Observer interface {
	// ObserveMount is called once per mount. adopted is true when the
	// address bar supplied the state and false when it was seeded.
	ObserveMount(adopted bool)

	// ObserveCommit is called after every commit with the written query.
	ObserveCommit(query string)

	// ObserveReset is called after every reset with the written query.
	ObserveReset(query string)
}

// Option is a functional option for configuring an Engine.
type Option interface {
	applyEngine(*engineConfig)
}

type engineConfig struct {
	onInit   any // func(T), checked by New
	logger   *slog.Logger
	observer Observer
}

type onInitOption struct {
	fn any
}

func (o onInitOption) applyEngine(c *engineConfig) {
	c.onInit = o.fn
}

// WithOnInit registers a callback invoked exactly once, after Mount has
// determined the effective initial state. T must match the engine's filter
// type; New reports a mismatch.
func WithOnInit[T any](fn func(T)) Option {
	return onInitOption{fn: fn}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o loggerOption) applyEngine(c *engineConfig) {
	c.logger = o.logger
}

// WithLogger sets the logger used for debug output and binding warnings.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger: logger}
}

type observerOption struct {
	o Observer
}

func (o observerOption) applyEngine(c *engineConfig) {
	c.observer = o.o
}

// WithObserver attaches an Observer, such as the Prometheus collector.
func WithObserver(o Observer) Option {
	return observerOption{o: o}
}
