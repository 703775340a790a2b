package filterscope

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/filtersync/pkg/filterstate"
	"github.com/vango-dev/filtersync/pkg/location"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

type listFilter struct {
	Status string `url:"status"`
	Page   int    `url:"page"`
}

func newEngine(t *testing.T, raw string) (*filterstate.Engine[listFilter], *location.Memory) {
	t.Helper()
	loc := location.NewMemory(raw)
	eng, err := filterstate.New(loc, listFilter{Page: 1},
		filterstate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("filterstate.New: %v", err)
	}
	eng.Mount()
	return eng, loc
}

func TestUseWithoutProvider(t *testing.T) {
	s := New[listFilter]("list")

	h, err := s.Use(context.Background())
	if h != nil {
		t.Fatalf("Use: got handle %v, want nil", h)
	}
	if !errors.Is(err, ErrScopeMissing) {
		t.Fatalf("Use: got %v, want ErrScopeMissing", err)
	}
}

func TestMustUsePanics(t *testing.T) {
	s := New[listFilter]("list")
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrScopeMissing) {
			t.Fatalf("recover: got %v, want ErrScopeMissing", r)
		}
	}()
	s.MustUse(context.Background())
}

func TestProvideAndUse(t *testing.T) {
	s := New[listFilter]("list")
	eng, loc := newEngine(t, "/items?status=open")
	ctx := s.Provide(context.Background(), eng)

	h, err := s.Use(ctx)
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if !h.Active() || h.Engine() != eng {
		t.Fatal("Use: handle not backed by the provided engine")
	}
	if got := h.State(); got != (listFilter{Status: "open"}) {
		t.Fatalf("State: got %+v", got)
	}

	h.Commit(querycodec.NewRecord(querycodec.F("page", querycodec.Int(2))))
	if got := loc.Read().RawQuery; got != "status=open&page=2" {
		t.Fatalf("query after Commit: got %q", got)
	}

	h.Update(func(f listFilter) listFilter {
		f.Status = ""
		return f
	})
	if got := loc.Read().RawQuery; got != "page=2" {
		t.Fatalf("query after Update: got %q", got)
	}

	reset := 0
	h.Reset(func(listFilter) { reset++ })
	if reset != 1 || loc.Read().RawQuery != "status=&page=1" {
		t.Fatalf("Reset: calls %d, query %q", reset, loc.Read().RawQuery)
	}
}

func TestScopesAreDistinct(t *testing.T) {
	a := New[listFilter]("a")
	b := New[listFilter]("b")
	eng, _ := newEngine(t, "/")

	ctx := a.Provide(context.Background(), eng)
	if _, err := b.Use(ctx); !errors.Is(err, ErrScopeMissing) {
		t.Fatalf("b.Use: got %v, want ErrScopeMissing", err)
	}
	if h, err := a.Use(ctx); err != nil || h.Engine() != eng {
		t.Fatalf("a.Use: got %v, %v", h, err)
	}
}

func TestProvideNilEngine(t *testing.T) {
	s := New[listFilter]("list")
	ctx := s.Provide(context.Background(), nil)
	if _, err := s.Use(ctx); !errors.Is(err, ErrScopeMissing) {
		t.Fatalf("Use: got %v, want ErrScopeMissing", err)
	}
}

func TestBoundaryIsInert(t *testing.T) {
	s := New[listFilter]("list")
	h := s.Boundary()

	if h.Active() {
		t.Fatal("Active: got true")
	}
	if h.Engine() != nil {
		t.Fatal("Engine: got non-nil")
	}
	if got := h.State(); got != (listFilter{}) {
		t.Fatalf("State: got %+v", got)
	}

	called := false
	h.Commit(querycodec.NewRecord(querycodec.F("page", querycodec.Int(2))))
	h.Update(func(f listFilter) listFilter { called = true; return f })
	h.Reset(func(listFilter) { called = true })
	if called {
		t.Fatal("inert handle invoked a callback")
	}

	var nilHandle *Handle[listFilter]
	if nilHandle.Active() {
		t.Fatal("nil handle: Active got true")
	}
}
