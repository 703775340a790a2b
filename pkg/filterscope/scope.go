package filterscope

import (
	"context"

	ferrors "github.com/vango-dev/filtersync/internal/errors"
	"github.com/vango-dev/filtersync/pkg/filterstate"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

// ErrScopeMissing is returned by Use when no provider is active in the
// context. Match it with errors.Is.
var ErrScopeMissing = ferrors.New(ferrors.CodeScopeMissing)

// Scope distributes one filter engine to everything running under a
// provider.
//
// Example:
//
//	var ListFilters = filterscope.New[ListFilter]("list")
//
//	func handle(ctx context.Context, eng *filterstate.Engine[ListFilter]) {
//	    ctx = ListFilters.Provide(ctx, eng)
//	    renderTable(ctx)
//	}
//
//	func renderTable(ctx context.Context) {
//	    h := ListFilters.MustUse(ctx)
//	    rows := load(h.State())
//	    ...
//	}
type Scope[T any] struct {
	name string

	// key uniquely identifies this scope among context values
	key any
}

// scopeKey wraps Scope to create a unique key type
type scopeKey[T any] struct {
	s *Scope[T]
}

// New creates a scope. name only appears in error messages.
func New[T any](name string) *Scope[T] {
	s := &Scope[T]{name: name}
	s.key = scopeKey[T]{s: s}
	return s
}

// Name returns the scope's name.
func (s *Scope[T]) Name() string {
	return s.name
}

// Provide returns a context in which Use resolves to eng.
func (s *Scope[T]) Provide(ctx context.Context, eng *filterstate.Engine[T]) context.Context {
	return context.WithValue(ctx, s.key, &Handle[T]{eng: eng})
}

// Use returns the handle provided by the nearest Provide. Outside a provider
// it returns an error wrapping ErrScopeMissing.
func (s *Scope[T]) Use(ctx context.Context) (*Handle[T], error) {
	if ctx != nil {
		if h, ok := ctx.Value(s.key).(*Handle[T]); ok && h.eng != nil {
			return h, nil
		}
	}
	return nil, ferrors.New(ferrors.CodeScopeMissing).
		WithDetail("scope " + s.name + " has no provider in this context").
		WithSuggestion("Wrap the caller with " + s.name + ".Provide(ctx, engine)")
}

// MustUse is like Use but panics outside a provider.
func (s *Scope[T]) MustUse(ctx context.Context) *Handle[T] {
	h, err := s.Use(ctx)
	if err != nil {
		panic(err)
	}
	return h
}

// Boundary returns an inert handle for consumers rendered outside any
// provider. Its state is the zero value and its operations do nothing.
func (s *Scope[T]) Boundary() *Handle[T] {
	return &Handle[T]{}
}

// Handle is a consumer's view of a provided engine.
type Handle[T any] struct {
	eng *filterstate.Engine[T]
}

// Active reports whether the handle is backed by an engine.
func (h *Handle[T]) Active() bool {
	return h != nil && h.eng != nil
}

// Engine returns the backing engine, or nil for an inert handle.
func (h *Handle[T]) Engine() *filterstate.Engine[T] {
	if h == nil {
		return nil
	}
	return h.eng
}

// State returns the engine's state, or the zero value when inert.
func (h *Handle[T]) State() T {
	if !h.Active() {
		var zero T
		return zero
	}
	return h.eng.State()
}

// Commit forwards to Engine.Commit.
func (h *Handle[T]) Commit(update querycodec.Record) {
	if h.Active() {
		h.eng.Commit(update)
	}
}

// Update forwards to Engine.Update.
func (h *Handle[T]) Update(fn func(T) T) {
	if h.Active() {
		h.eng.Update(fn)
	}
}

// Reset forwards to Engine.Reset.
func (h *Handle[T]) Reset(onReset func(T)) {
	if h.Active() {
		h.eng.Reset(onReset)
	}
}
