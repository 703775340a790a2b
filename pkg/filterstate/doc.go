// Package filterstate keeps a view's filter state and the address bar's query
// string in sync.
//
// An Engine holds one filter record for the lifetime of a view. It is the
// only writer of both the held state and the query string:
//
//	type ListFilter struct {
//	    Status string `url:"status"`
//	    Page   int    `url:"page"`
//	    Query  string `url:"q"`
//	}
//
//	eng, err := filterstate.New(loc, ListFilter{Page: 1},
//	    filterstate.WithOnInit(func(f ListFilter) { load(f) }),
//	)
//	eng.Mount()                                  // adopt ?status=open&page=2, or seed ?page=1
//	eng.Commit(querycodec.NewRecord(querycodec.F("q", querycodec.String("go"))))
//	eng.Update(func(f ListFilter) ListFilter { f.Page++; return f })
//	eng.Reset(nil)
//
// # Commit
//
// Commit merges a partial record into the held state, writes the stripped
// merge to the address bar with a replace navigation (no history entry), and
// keeps the unstripped merge in memory. {a: 1, b: "x"} committed with
// {b: ""} holds {a: 1, b: ""} and writes "a=1".
//
// # Reset
//
// Reset replaces the held state with the initial state and writes all of its
// fields, empty ones included.
//
// # Mount
//
// Mount runs once. A non-empty query string is decoded and adopted as is; an
// empty one is seeded from the initial state through a full Commit. Values
// decoded from the address bar are strings or numbers only, so State binds
// them back onto T leniently (see querycodec.Unmarshal).
//
// Engines serialize their own calls. Two engines sharing one address bar are
// not coordinated: each overwrites the query string on its own commits.
package filterstate
