package querycodec

import (
	"encoding/json"
	"testing"
)

func TestRecordWithIsCopyOnWrite(t *testing.T) {
	base := NewRecord(F("a", Int(1)))
	next := base.With("b", String("x"))

	if base.Has("b") {
		t.Fatalf("With mutated receiver: %v", base)
	}
	if got := next.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys: got %v, want [a b]", got)
	}

	trimmed := next.Without("a")
	if trimmed.Has("a") || !next.Has("a") {
		t.Fatalf("Without: got %v from %v", trimmed, next)
	}
}

func TestMerge(t *testing.T) {
	base := NewRecord(F("a", Int(1)), F("b", String("x")))
	update := NewRecord(F("c", Bool(true)), F("b", String("")))

	got := Merge(base, update)
	want := NewRecord(F("a", Int(1)), F("b", String("")), F("c", Bool(true)))
	if !got.Equal(want) {
		t.Fatalf("Merge: got %v, want %v", got, want)
	}
	if v, _ := base.Get("b"); !v.Equal(String("x")) {
		t.Fatalf("Merge mutated base: %v", base)
	}
}

func TestRecordEquality(t *testing.T) {
	a := NewRecord(F("x", Int(1)), F("y", Int(2)))
	b := NewRecord(F("y", Int(2)), F("x", Int(1)))

	if a.Equal(b) {
		t.Error("Equal should be order sensitive")
	}
	if !a.SameFields(b) {
		t.Error("SameFields should ignore order")
	}
	if a.SameFields(NewRecord(F("x", Int(1)), F("y", String("2")))) {
		t.Error("SameFields should compare kinds")
	}
	if !Float(3).Equal(Int(3)) {
		t.Error("integral floats should equal ints")
	}
}

func TestRecordJSON(t *testing.T) {
	rec := NewRecord(
		F("status", String("open")),
		F("page", Int(2)),
		F("ratio", Float(0.5)),
		F("archived", Bool(false)),
		F("owner", Null()),
	)

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"status":"open","page":2,"ratio":0.5,"archived":false,"owner":null}`
	if string(data) != want {
		t.Fatalf("Marshal: got %s, want %s", data, want)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(rec) {
		t.Fatalf("Unmarshal: got %v, want %v", back, rec)
	}
}

func TestRecordJSONRejectsNesting(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"a":{"b":1}}`), &r); err == nil {
		t.Error("expected error for nested object")
	}
	if err := json.Unmarshal([]byte(`[1,2]`), &r); err == nil {
		t.Error("expected error for array")
	}
}

func TestRecordString(t *testing.T) {
	rec := NewRecord(F("a", Int(1)), F("b", String("")))
	if got := rec.String(); got != `{a: 1, b: ""}` {
		t.Fatalf("String: got %s", got)
	}
}
