package querycodec

import (
	"math"
	"strconv"
)

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindNull   Kind = iota // Absent or nil value
	KindString             // Text
	KindNumber             // Integer or floating point number
	KindBool               // Boolean
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a single filter field value.
// The zero Value is null.
type Value struct {
	kind     Kind
	str      string
	i        int64
	f        float64
	integral bool
	b        bool
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Int returns an integral number value.
func Int(n int64) Value {
	return Value{kind: KindNumber, i: n, f: float64(n), integral: true}
}

// Float returns a number value. Floats with no fractional part that fit in an
// int64 are stored as integers so they compare equal to Int.
func Float(f float64) Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
		return Int(int64(f))
	}
	return Value{kind: KindNumber, f: f}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// IntValue returns the integer payload and whether v is an integral number.
func (v Value) IntValue() (int64, bool) {
	return v.i, v.kind == KindNumber && v.integral
}

// FloatValue returns the numeric payload and whether v is a number.
func (v Value) FloatValue() (float64, bool) {
	return v.f, v.kind == KindNumber
}

// BoolValue returns the boolean payload and whether v is a boolean.
func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Text renders v the way it appears in a query string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.integral {
			return strconv.FormatInt(v.i, 10)
		}
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// String implements fmt.Stringer. Strings are quoted so they can be told
// apart from numbers in logs.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNull:
		return "null"
	default:
		return v.Text()
	}
}

// Empty reports whether v is dropped by Strip: any non-boolean value that is
// null, an empty string, zero or NaN.
func (v Value) Empty() bool {
	switch v.kind {
	case KindBool:
		return false
	case KindString:
		return v.str == ""
	case KindNumber:
		if v.integral {
			return v.i == 0
		}
		return v.f == 0 || math.IsNaN(v.f)
	default:
		return true
	}
}

// Equal reports whether v and o hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		if v.integral && o.integral {
			return v.i == o.i
		}
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}
