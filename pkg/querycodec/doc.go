// Package querycodec converts between URL query strings and filter records.
//
// A Record is an ordered set of fields whose values are strings, numbers,
// booleans or null. Records read back from a query string only ever contain
// strings and numbers: the codec infers a number when the raw text is a
// base-10 integer without a hyphen, and keeps everything else as a string.
//
//	rec := querycodec.DecodeQuery("status=open&page=2")
//	// rec: {status: "open", page: 2}
//
//	q := querycodec.Encode(querycodec.Strip(rec.With("q", querycodec.String(""))))
//	// q: "status=open&page=2"
//
// Strip removes empty fields (empty strings, zero numbers, null) before a
// record is written to the address bar. Booleans always survive, so
// {archived: false} encodes as "archived=false".
//
// # Struct Binding
//
// Marshal and Unmarshal map flat structs onto records. Keys come from the
// `url` tag or the lower-cased field name; `url:"-"` skips a field:
//
//	type ListFilter struct {
//	    Status   string `url:"status"`
//	    Page     int    `url:"page"`
//	    Archived bool   `url:"archived"`
//	}
//
// Unmarshal is lenient. A raw string bound to an integer or boolean field is
// parsed; fields that cannot be converted keep their zero value and are
// reported in the returned error.
package querycodec
