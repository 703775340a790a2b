package filterstate

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/filtersync/pkg/location"
	"github.com/vango-dev/filtersync/pkg/querycodec"
)

type listFilter struct {
	Status string `url:"status"`
	Page   int    `url:"page"`
	Q      string `url:"q"`
}

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

type recordingObserver struct {
	mu      sync.Mutex
	mounts  []bool
	commits []string
	resets  []string
}

func (o *recordingObserver) ObserveMount(adopted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mounts = append(o.mounts, adopted)
}

func (o *recordingObserver) ObserveCommit(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commits = append(o.commits, query)
}

func (o *recordingObserver) ObserveReset(query string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resets = append(o.resets, query)
}

func rec(fields ...querycodec.Field) querycodec.Record {
	return querycodec.NewRecord(fields...)
}

func TestMountAdoptsQuery(t *testing.T) {
	loc := location.NewMemory("/items?status=open&page=2")

	var initCalls []listFilter
	eng, err := New(loc, listFilter{Page: 1}, quiet,
		WithOnInit(func(f listFilter) { initCalls = append(initCalls, f) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := eng.Mount()
	want := listFilter{Status: "open", Page: 2}
	if got != want {
		t.Fatalf("Mount: got %+v, want %+v", got, want)
	}
	if len(initCalls) != 1 || initCalls[0] != want {
		t.Fatalf("onInit: got %+v", initCalls)
	}
	if loc.Replacements() != 0 {
		t.Errorf("Replacements: got %d, want 0", loc.Replacements())
	}
	if eng.Query() != "status=open&page=2" {
		t.Errorf("Query: got %q", eng.Query())
	}

	wantRec := rec(
		querycodec.F("status", querycodec.String("open")),
		querycodec.F("page", querycodec.Int(2)),
	)
	if !eng.Record().Equal(wantRec) {
		t.Errorf("Record: got %v, want %v", eng.Record(), wantRec)
	}
}

func TestMountSeedsEmptyQuery(t *testing.T) {
	loc := location.NewMemory("/items")

	var initCalls []listFilter
	eng, err := New(loc, listFilter{Page: 1}, quiet,
		WithOnInit(func(f listFilter) { initCalls = append(initCalls, f) }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := eng.Mount()
	if got != (listFilter{Page: 1}) {
		t.Fatalf("Mount: got %+v", got)
	}
	if u := loc.Read(); u.Path != "/items" || u.RawQuery != "page=1" {
		t.Fatalf("location: got %#v, want /items?page=1", u)
	}
	if len(initCalls) != 1 || initCalls[0] != (listFilter{Page: 1}) {
		t.Fatalf("onInit: got %+v", initCalls)
	}
	if eng.IsSet() {
		t.Error("IsSet: got true after seeding from initial state")
	}
}

func TestMountRunsOnce(t *testing.T) {
	loc := location.NewMemory("/items")
	calls := 0
	eng, err := New(loc, listFilter{Page: 1}, quiet,
		WithOnInit(func(listFilter) { calls++ }),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	eng.Mount()
	eng.Commit(rec(querycodec.F("page", querycodec.Int(3))))
	loc.Push("/items")

	got := eng.Mount()
	if calls != 1 {
		t.Errorf("onInit calls: got %d, want 1", calls)
	}
	if got.Page != 3 {
		t.Errorf("second Mount: got page %d, want 3", got.Page)
	}
	if loc.Read().RawQuery != "" {
		t.Errorf("second Mount wrote the location: %q", loc.Read().RawQuery)
	}
	if !eng.Mounted() {
		t.Error("Mounted: got false")
	}
}

func TestCommitKeepsEmptyFieldsInState(t *testing.T) {
	loc := location.NewMemory("/")
	initial := rec(
		querycodec.F("a", querycodec.Int(1)),
		querycodec.F("b", querycodec.String("x")),
	)
	eng, err := New(loc, initial, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()
	if loc.Read().RawQuery != "a=1&b=x" {
		t.Fatalf("seeded query: got %q", loc.Read().RawQuery)
	}

	eng.Commit(rec(querycodec.F("b", querycodec.String(""))))

	want := rec(
		querycodec.F("a", querycodec.Int(1)),
		querycodec.F("b", querycodec.String("")),
	)
	if got := eng.State(); !got.Equal(want) {
		t.Fatalf("State: got %v, want %v", got, want)
	}
	if got := loc.Read().RawQuery; got != "a=1" {
		t.Fatalf("query: got %q, want %q", got, "a=1")
	}
}

func TestCommitStripsButKeepsBooleans(t *testing.T) {
	loc := location.NewMemory("/")
	eng, err := New(loc, querycodec.Record{}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	eng.Commit(rec(
		querycodec.F("n", querycodec.Int(0)),
		querycodec.F("s", querycodec.String("")),
		querycodec.F("z", querycodec.Null()),
		querycodec.F("archived", querycodec.Bool(false)),
		querycodec.F("q", querycodec.String("a b")),
	))

	if got := loc.Read().RawQuery; got != "archived=false&q=a+b" {
		t.Fatalf("query: got %q", got)
	}
	if eng.Record().Len() != 5 {
		t.Errorf("Record: got %d fields, want 5", eng.Record().Len())
	}
}

func TestCommitDoesNotGrowHistory(t *testing.T) {
	loc := location.NewMemory("/items")
	eng, err := New(loc, listFilter{Page: 1}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()
	for i := 2; i <= 5; i++ {
		eng.Commit(rec(querycodec.F("page", querycodec.Int(int64(i)))))
	}

	if loc.HistoryLen() != 1 {
		t.Errorf("HistoryLen: got %d, want 1", loc.HistoryLen())
	}
	if loc.Replacements() != 5 {
		t.Errorf("Replacements: got %d, want 5", loc.Replacements())
	}
	if loc.Read().RawQuery != "page=5" {
		t.Errorf("query: got %q", loc.Read().RawQuery)
	}
}

func TestUpdateAndSet(t *testing.T) {
	loc := location.NewMemory("/items?status=open")
	eng, err := New(loc, listFilter{Page: 1}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()

	eng.Update(func(f listFilter) listFilter {
		f.Page++
		return f
	})
	if got := eng.State(); got != (listFilter{Status: "open", Page: 1}) {
		t.Fatalf("Update: got %+v", got)
	}
	if got := loc.Read().RawQuery; got != "status=open&page=1" {
		t.Fatalf("query after Update: got %q", got)
	}

	eng.Set(listFilter{Q: "go"})
	if got := eng.State(); got != (listFilter{Q: "go"}) {
		t.Fatalf("Set: got %+v", got)
	}
	if got := loc.Read().RawQuery; got != "q=go" {
		t.Fatalf("query after Set: got %q", got)
	}
}

func TestResetWritesAllInitialFields(t *testing.T) {
	loc := location.NewMemory("/items?status=open&page=4")
	eng, err := New(loc, listFilter{Page: 1}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()
	eng.Commit(rec(querycodec.F("q", querycodec.String("go"))))

	var got []listFilter
	eng.Reset(func(f listFilter) { got = append(got, f) })

	if len(got) != 1 || got[0] != (listFilter{Page: 1}) {
		t.Fatalf("onReset: got %+v", got)
	}
	if q := loc.Read().RawQuery; q != "status=&page=1&q=" {
		t.Fatalf("query: got %q", q)
	}
	if eng.State() != (listFilter{Page: 1}) {
		t.Errorf("State: got %+v", eng.State())
	}
	if eng.IsSet() {
		t.Error("IsSet: got true after Reset")
	}
	if eng.Initial() != (listFilter{Page: 1}) {
		t.Errorf("Initial: got %+v", eng.Initial())
	}

	eng.Reset(nil)
}

func TestStateBindsLeniently(t *testing.T) {
	loc := location.NewMemory("/items?page=abc&status=open")
	eng, err := New(loc, listFilter{Page: 1}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := eng.Mount()
	if got != (listFilter{Status: "open"}) {
		t.Fatalf("Mount: got %+v", got)
	}
	if v, _ := eng.Record().Get("page"); !v.Equal(querycodec.String("abc")) {
		t.Errorf("held page: got %v", v)
	}
	if !eng.IsSet() {
		t.Error("IsSet: got false")
	}
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	loc := location.NewMemory("/items")
	eng, err := New(loc, listFilter{Page: 1}, quiet, WithObserver(obs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	eng.Mount()
	eng.Commit(rec(querycodec.F("status", querycodec.String("open"))))
	eng.Reset(nil)

	if len(obs.mounts) != 1 || obs.mounts[0] {
		t.Errorf("mounts: got %v, want [false]", obs.mounts)
	}
	wantCommits := []string{"page=1", "status=open&page=1"}
	if len(obs.commits) != len(wantCommits) {
		t.Fatalf("commits: got %v, want %v", obs.commits, wantCommits)
	}
	for i := range wantCommits {
		if obs.commits[i] != wantCommits[i] {
			t.Errorf("commit %d: got %q, want %q", i, obs.commits[i], wantCommits[i])
		}
	}
	if len(obs.resets) != 1 || obs.resets[0] != "status=&page=1&q=" {
		t.Errorf("resets: got %v", obs.resets)
	}
}

func TestNewRejects(t *testing.T) {
	loc := location.NewMemory("/")

	t.Run("NilLocation", func(t *testing.T) {
		if _, err := New[listFilter](nil, listFilter{}); err == nil {
			t.Fatal("New: expected error")
		}
	})

	t.Run("PointerType", func(t *testing.T) {
		_, err := New(loc, &listFilter{})
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("New: got %v, want ErrUnsupportedType", err)
		}
	})

	t.Run("NestedStruct", func(t *testing.T) {
		type nested struct {
			Inner listFilter
		}
		_, err := New(loc, nested{})
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("New: got %v, want ErrUnsupportedType", err)
		}
	})

	t.Run("OnInitTypeMismatch", func(t *testing.T) {
		_, err := New(loc, listFilter{}, WithOnInit(func(querycodec.Record) {}))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("New: got %v, want ErrUnsupportedType", err)
		}
	})
}

func TestConcurrentCommits(t *testing.T) {
	loc := location.NewMemory("/")
	eng, err := New(loc, querycodec.Record{}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()
	before := loc.Replacements()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng.Commit(rec(querycodec.F("k", querycodec.Int(int64(i+1)))))
			_ = eng.State()
		}(i)
	}
	wg.Wait()

	if got := loc.Replacements() - before; got != 16 {
		t.Errorf("Replacements: got %d, want 16", got)
	}
	held := eng.Record()
	if held.Len() != 1 {
		t.Fatalf("Record: got %v", held)
	}
	v, _ := held.Get("k")
	k, ok := v.IntValue()
	if !ok || k < 1 || k > 16 {
		t.Fatalf("k: got %v, want 1..16", v)
	}
	if got, want := loc.Read().RawQuery, "k="+strconv.FormatInt(k, 10); got != want {
		t.Errorf("RawQuery: got %q, want %q", got, want)
	}
}

func TestUpdatePanicReleasesEngine(t *testing.T) {
	loc := location.NewMemory("/items")
	eng, err := New(loc, listFilter{Page: 1}, quiet)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	eng.Mount()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("Update: panic not propagated")
			}
		}()
		eng.Update(func(listFilter) listFilter { panic("boom") })
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		eng.Set(listFilter{Page: 2})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine still locked after a panicking update")
	}
	if got := loc.Read().RawQuery; got != "page=2" {
		t.Errorf("RawQuery: got %q, want %q", got, "page=2")
	}
}
