package filterstate

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	ferrors "github.com/vango-dev/filtersync/internal/errors"
	"github.com/vango-dev/filtersync/pkg/location"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

// ErrUnsupportedType is returned by New when T is not a flat struct or a
// querycodec.Record, or when an option does not match T.
var ErrUnsupportedType = ferrors.New(ferrors.CodeUnsupportedType)

// Engine synchronizes one filter state with one Location.
type Engine[T any] struct {
	mu sync.Mutex

	loc      location.Location
	initial  querycodec.Record
	state    querycodec.Record
	query    string
	mounted  bool
	onInit   func(T)
	logger   *slog.Logger
	observer Observer
}

// New creates an engine bound to loc with the given initial state. The held
// state starts as initial; call Mount once the view is attached.
func New[T any](loc location.Location, initial T, opts ...Option) (*Engine[T], error) {
	if loc == nil {
		return nil, fmt.Errorf("filterstate: nil location")
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Ptr {
		return nil, ferrors.New(ferrors.CodeUnsupportedType).
			Wrap(fmt.Errorf("%s is a pointer type", t)).
			WithSuggestion("Use the struct type itself as the filter type")
	}
	if err := querycodec.CheckType(t); err != nil {
		return nil, ferrors.FromError(err, ferrors.CodeUnsupportedType)
	}

	rec, err := querycodec.Marshal(initial)
	if err != nil {
		return nil, ferrors.FromError(err, ferrors.CodeUnsupportedType)
	}

	var cfg engineConfig
	for _, opt := range opts {
		opt.applyEngine(&cfg)
	}

	e := &Engine[T]{
		loc:      loc,
		initial:  rec,
		state:    rec.Clone(),
		logger:   cfg.logger,
		observer: cfg.observer,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if cfg.onInit != nil {
		fn, ok := cfg.onInit.(func(T))
		if !ok {
			return nil, ferrors.New(ferrors.CodeUnsupportedType).
				Wrap(fmt.Errorf("on-init callback %T does not accept %s", cfg.onInit, t))
		}
		e.onInit = fn
	}
	return e, nil
}

// Mount reconciles the address bar with the initial state. It runs once per
// engine; later calls return the current state without side effects.
//
// A non-empty query string is decoded and adopted as the held state, and the
// address bar is left untouched. An empty one is merged with the initial
// state (initial wins) and committed, so the address bar immediately shows
// the initial filters. Either way the on-init callback receives the result.
func (e *Engine[T]) Mount() T {
	e.mu.Lock()
	if e.mounted {
		out := e.project(e.state)
		e.mu.Unlock()
		return out
	}
	e.mounted = true

	current := e.loc.Read()
	decoded := querycodec.DecodeQuery(current.RawQuery)

	adopted := current.RawQuery != ""
	var written string
	if adopted {
		e.state = decoded
		e.query = current.RawQuery
	} else {
		written = e.commitLocked(querycodec.Merge(decoded, e.initial))
	}
	out := e.project(e.state)
	e.logger.Debug("filter mounted",
		"path", current.Path,
		"adopted", adopted,
		"state", e.state.String(),
	)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObserveMount(adopted)
		if !adopted {
			e.observer.ObserveCommit(written)
		}
	}
	if e.onInit != nil {
		e.onInit(out)
	}
	return out
}

// Commit merges update into the held state and writes the stripped merge to
// the address bar with a replace navigation. The held state keeps empty
// fields; only the query string drops them.
func (e *Engine[T]) Commit(update querycodec.Record) {
	e.mu.Lock()
	query := e.commitLocked(update)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObserveCommit(query)
	}
}

// Update commits fn applied to the current state. Every field of the
// returned value is merged. fn runs while the engine is locked and must not
// call back into it; a panic in fn propagates after the lock is released.
func (e *Engine[T]) Update(fn func(T) T) {
	query, ok := e.update(fn)
	if ok && e.observer != nil {
		e.observer.ObserveCommit(query)
	}
}

func (e *Engine[T]) update(fn func(T) T) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := fn(e.project(e.state))
	rec, err := querycodec.Marshal(next)
	if err != nil {
		e.logger.Error("filter update dropped", "error", err)
		return "", false
	}
	return e.commitLocked(rec), true
}

// Set commits every field of v.
func (e *Engine[T]) Set(v T) {
	rec, err := querycodec.Marshal(v)
	if err != nil {
		e.logger.Error("filter set dropped", "error", err)
		return
	}
	e.Commit(rec)
}

func (e *Engine[T]) commitLocked(update querycodec.Record) string {
	merged := querycodec.Merge(e.state, update)
	query := querycodec.Encode(querycodec.Strip(merged))

	e.loc.Replace(query)
	e.state = merged
	e.query = query

	e.logger.Debug("filter commit", "query", query, "fields", merged.Len())
	return query
}

// Reset replaces the held state with the initial state and writes every
// initial field to the address bar, empty ones included. onReset, if not
// nil, receives the initial state afterwards.
func (e *Engine[T]) Reset(onReset func(T)) {
	e.mu.Lock()
	e.state = e.initial.Clone()
	query := querycodec.Encode(e.initial)
	e.loc.Replace(query)
	e.query = query
	out := e.project(e.state)
	e.logger.Debug("filter reset", "query", query)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObserveReset(query)
	}
	if onReset != nil {
		onReset(out)
	}
}

// State returns the held state bound onto T.
func (e *Engine[T]) State() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project(e.state)
}

// Record returns a copy of the held state.
func (e *Engine[T]) Record() querycodec.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Initial returns the initial state.
func (e *Engine[T]) Initial() T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project(e.initial)
}

// Query returns the query string last written or adopted by the engine.
func (e *Engine[T]) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Mounted reports whether Mount has run.
func (e *Engine[T]) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// IsSet reports whether the held state differs from the initial state.
func (e *Engine[T]) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.state.SameFields(e.initial)
}

// project binds rec onto T. Fields that do not fit keep their zero value.
func (e *Engine[T]) project(rec querycodec.Record) T {
	var out T
	if err := querycodec.Unmarshal(rec, &out); err != nil {
		e.logger.Debug("filter fields not bound", "error", ferrors.New(ferrors.CodeInvalidField).Wrap(err))
	}
	return out
}
