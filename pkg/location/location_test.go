package location

import (
	"testing"

	"github.com/vango-dev/filtersync/pkg/protocol"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want URL
	}{
		{"/items?status=open", URL{Path: "/items", RawQuery: "status=open"}},
		{"/items", URL{Path: "/items"}},
		{"?page=1", URL{Path: "/", RawQuery: "page=1"}},
		{"", URL{Path: "/"}},
	}
	for _, tt := range tests {
		if got := Parse(tt.raw); got != tt.want {
			t.Errorf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}

	if got := (URL{Path: "/items", RawQuery: "page=1"}).String(); got != "/items?page=1" {
		t.Errorf("String: got %q", got)
	}
}

func TestMemoryReplaceKeepsPathAndHistory(t *testing.T) {
	m := NewMemory("/items?status=open")

	m.Replace("status=closed&page=2")

	if got := m.Read(); got.Path != "/items" || got.RawQuery != "status=closed&page=2" {
		t.Fatalf("Read: got %#v", got)
	}
	if m.HistoryLen() != 1 {
		t.Errorf("HistoryLen: got %d, want 1", m.HistoryLen())
	}
	if m.Replacements() != 1 {
		t.Errorf("Replacements: got %d, want 1", m.Replacements())
	}

	m.Push("/other")
	if m.HistoryLen() != 2 {
		t.Errorf("HistoryLen after Push: got %d, want 2", m.HistoryLen())
	}
	if got := m.Writes(); len(got) != 1 || got[0] != "status=closed&page=2" {
		t.Errorf("Writes: got %v", got)
	}
}

func TestNavigatorQueuesReplacePatch(t *testing.T) {
	var got []protocol.Patch
	nav := NewNavigator(URL{Path: "/items"}, func(p protocol.Patch) {
		got = append(got, p)
	})

	nav.Replace("page=1")

	if len(got) != 1 || got[0].Op != protocol.PatchURLReplace || got[0].Value != "page=1" {
		t.Fatalf("patches: got %#v", got)
	}
	if u := nav.Read(); u.Path != "/items" || u.RawQuery != "page=1" {
		t.Fatalf("Read: got %#v", u)
	}

	NewNavigator(URL{}, nil).Replace("x=1") // no queue, no panic
}
