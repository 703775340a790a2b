package querycodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is a single key/value entry of a Record.
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for building a Field.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// Record is an ordered set of filter fields.
//
// Records behave like values: With, Without and Merge return new records and
// leave the receiver untouched. The zero Record is empty and ready to use.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord builds a record from fields in order. A repeated key keeps its
// first position and takes the last value.
func NewRecord(fields ...Field) Record {
	r := Record{}
	for _, f := range fields {
		r.set(f.Key, f.Value)
	}
	return r
}

func (r *Record) set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Keys returns the field keys in order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Fields returns the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Field{Key: k, Value: r.vals[k]})
	}
	return out
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	out := Record{
		keys: make([]string, len(r.keys)),
		vals: make(map[string]Value, len(r.vals)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// With returns a copy of r with key set to v.
func (r Record) With(key string, v Value) Record {
	out := r.Clone()
	out.set(key, v)
	return out
}

// Without returns a copy of r with key removed.
func (r Record) Without(key string) Record {
	out := Record{vals: make(map[string]Value, len(r.vals))}
	for _, k := range r.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = r.vals[k]
	}
	return out
}

// Merge returns base overlaid with update. Keys of base keep their position;
// keys only present in update are appended in update order. Update wins on
// conflicting keys.
func Merge(base, update Record) Record {
	out := base.Clone()
	for _, k := range update.keys {
		out.set(k, update.vals[k])
	}
	return out
}

// Equal reports whether r and o hold the same keys, in the same order, with
// equal values.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k {
			return false
		}
		if !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// SameFields reports whether r and o hold the same keys with equal values,
// regardless of order.
func (r Record) SameFields(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for k, v := range r.vals {
		ov, ok := o.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders r as {k: v, ...} for logs and test failures.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(r.vals[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON encodes r as a JSON object, preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := r.vals[k]
		var raw []byte
		switch v.kind {
		case KindString:
			raw, err = json.Marshal(v.str)
		case KindNumber:
			raw = []byte(v.Text())
		case KindBool:
			raw, err = json.Marshal(v.b)
		default:
			raw = []byte("null")
		}
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object into r, preserving key order.
// Nested objects and arrays are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = Record{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("querycodec: record must be a JSON object")
	}

	out := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("querycodec: unexpected key token %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch val := tok.(type) {
		case string:
			out.set(key, String(val))
		case bool:
			out.set(key, Bool(val))
		case nil:
			out.set(key, Null())
		case json.Number:
			if n, err := val.Int64(); err == nil {
				out.set(key, Int(n))
				continue
			}
			f, err := val.Float64()
			if err != nil {
				return fmt.Errorf("querycodec: field %q: %w", key, err)
			}
			out.set(key, Float(f))
		default:
			return fmt.Errorf("querycodec: field %q: nested values are not supported", key)
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
