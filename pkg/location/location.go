// Package location abstracts the browser address bar.
//
// The filter engine never touches a real browser. It reads the current URL
// once at mount time and writes the query component through Replace, which
// must amend the current history entry instead of pushing a new one.
//
// Memory is an in-process address bar for tests and tooling. Navigator binds
// the port to a live session: Replace queues a URL replace patch that the
// thin client applies with history.replaceState.
package location

import (
	"strings"
	"sync"
)

// URL is the part of the address bar the engine cares about.
type URL struct {
	Path     string
	RawQuery string
}

// String renders the URL as path?query.
func (u URL) String() string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// Parse splits a path?query string. A missing path defaults to "/".
func Parse(raw string) URL {
	path, query, _ := strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	return URL{Path: path, RawQuery: query}
}

// Location is the port between the engine and the host's address bar.
type Location interface {
	// Read returns the current path and query.
	Read() URL

	// Replace swaps the query component of the current URL, keeping the
	// path, without creating a new history entry.
	Replace(rawQuery string)
}

// Memory is an in-process Location. It is safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	current  URL
	history  int
	replaced int
	log      []string
}

// NewMemory creates a Memory location positioned at raw (path?query).
func NewMemory(raw string) *Memory {
	return &Memory{current: Parse(raw), history: 1}
}

// Read implements Location.
func (m *Memory) Read() URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Replace implements Location.
func (m *Memory) Replace(rawQuery string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.RawQuery = rawQuery
	m.replaced++
	m.log = append(m.log, rawQuery)
}

// Push navigates to raw, adding a history entry. The engine never calls it;
// it simulates the user following a link between mounts.
func (m *Memory) Push(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Parse(raw)
	m.history++
}

// HistoryLen returns the number of history entries.
func (m *Memory) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history
}

// Replacements returns how many times Replace was called.
func (m *Memory) Replacements() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaced
}

// Writes returns the queries written by Replace, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.log))
	copy(out, m.log)
	return out
}
