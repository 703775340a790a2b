package querycodec

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Pair is a raw key/value pair as it appears in a query string.
type Pair struct {
	Key string
	Raw string
}

// ParsePairs splits a raw query string into pairs.
//
// A single leading '?' is ignored. Pieces are split on '&' and then on the
// first '='; a piece without '=' yields an empty value. Keys and values are
// percent-decoded with '+' read as a space; a malformed escape stays
// literal without affecting the rest of the value. Empty pieces are skipped. When a key repeats, the pair keeps the
// first position and the last value.
func ParsePairs(raw string) []Pair {
	raw = strings.TrimPrefix(raw, "?")

	var pairs []Pair
	index := make(map[string]int)
	for raw != "" {
		var piece string
		piece, raw, _ = strings.Cut(raw, "&")
		if piece == "" {
			continue
		}

		key, value, _ := strings.Cut(piece, "=")
		key = unescape(key)
		value = unescape(value)

		if i, ok := index[key]; ok {
			pairs[i].Raw = value
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, Pair{Key: key, Raw: value})
	}
	return pairs
}

// unescape decodes '+' as a space and each valid %XX escape. Malformed
// escapes are kept literally, one at a time.
func unescape(s string) string {
	if !strings.ContainsAny(s, "+%") {
		return s
	}
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b = append(b, ' ')
		case c == '%' && i+2 < len(s) && ishex(s[i+1]) && ishex(s[i+2]):
			b = append(b, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

func ishex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// DecodeValue infers the type of a raw query value. The result is a number
// when raw parses as a base-10 integer and contains no '-', otherwise the raw
// string. "-5" therefore stays the string "-5", as do date-like and ranged
// tokens such as "2024-01-02" and "10-20". Integers beyond the int64 range
// decode as floating-point numbers.
func DecodeValue(raw string) Value {
	if strings.Contains(raw, "-") {
		return String(raw)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		return Int(n)
	}
	if errors.Is(err, strconv.ErrRange) {
		if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			return Float(f)
		}
	}
	return String(raw)
}

// Decode builds a record from pairs. It never fails.
func Decode(pairs []Pair) Record {
	r := Record{}
	for _, p := range pairs {
		r.set(p.Key, DecodeValue(p.Raw))
	}
	return r
}

// DecodeQuery parses and decodes a raw query string.
func DecodeQuery(raw string) Record {
	return Decode(ParsePairs(raw))
}

// Encode serializes r as key=value pairs joined by '&', in record order.
// Keys and values are escaped with url.QueryEscape. Booleans render as
// "true"/"false" and null renders as an empty value.
func Encode(r Record) string {
	if len(r.keys) == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range r.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(r.vals[k].Text()))
	}
	return b.String()
}

// Strip returns a copy of r without empty fields. A field is dropped when
// its value is not a boolean and is null, an empty string, zero or NaN.
func Strip(r Record) Record {
	out := Record{vals: make(map[string]Value, len(r.vals))}
	for _, k := range r.keys {
		v := r.vals[k]
		if v.Empty() {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = v
	}
	return out
}
