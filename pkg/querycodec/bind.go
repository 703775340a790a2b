package querycodec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned when a value cannot be mapped onto a Record.
var ErrUnsupportedType = errors.New("querycodec: unsupported filter type")

// FieldError describes a record field that could not be bound to a struct
// field. The struct field keeps its zero value.
type FieldError struct {
	Key   string
	Field string
	Value Value
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("querycodec: field %s (%s): cannot bind %s: %v", e.Field, e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

var recordType = reflect.TypeOf(Record{})

// structField is a bindable struct field.
type structField struct {
	key   string
	name  string
	index int
}

// fieldsOf returns the bindable fields of struct type t in declaration order.
func fieldsOf(t reflect.Type) []structField {
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		key := f.Tag.Get("url")
		if key == "-" {
			continue
		}
		if key == "" {
			key = strings.ToLower(f.Name)
		}
		out = append(out, structField{key: key, name: f.Name, index: i})
	}
	return out
}

// CheckType reports whether values of type t can be bound to records.
// t must be Record, a struct, or a pointer to a struct.
func CheckType(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	if t == recordType {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, t)
	}
	for _, sf := range fieldsOf(t) {
		ft := t.Field(sf.index).Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if !scalarKind(ft.Kind()) {
			return fmt.Errorf("%w: field %s has kind %s", ErrUnsupportedType, sf.name, ft.Kind())
		}
	}
	return nil
}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Marshal converts a flat struct (or a Record) into a Record. Every bindable
// field is included, zero values too; use Strip to drop empties.
func Marshal(v any) (Record, error) {
	switch r := v.(type) {
	case Record:
		return r.Clone(), nil
	case *Record:
		if r == nil {
			return Record{}, nil
		}
		return r.Clone(), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return Record{}, fmt.Errorf("%w: nil value", ErrUnsupportedType)
	}
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Record{}, nil
		}
		rv = rv.Elem()
	}
	if err := CheckType(rv.Type()); err != nil {
		return Record{}, err
	}

	out := Record{}
	for _, sf := range fieldsOf(rv.Type()) {
		out.set(sf.key, valueOf(rv.Field(sf.index)))
	}
	return out, nil
}

func valueOf(v reflect.Value) Value {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return Null()
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		return String(v.String())
	case reflect.Bool:
		return Bool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u))
		}
		return Int(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float(v.Float())
	default:
		return Null()
	}
}

// Unmarshal binds r onto dst, which must be a non-nil pointer to a struct or
// to a Record. Keys absent from r leave the field untouched. Values that
// cannot be converted leave the field at its zero value; every such field is
// reported as a *FieldError in the joined result.
func Unmarshal(r Record, dst any) error {
	if rp, ok := dst.(*Record); ok {
		if rp == nil {
			return fmt.Errorf("%w: nil *Record", ErrUnsupportedType)
		}
		*rp = r.Clone()
		return nil
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: destination must be a non-nil pointer", ErrUnsupportedType)
	}
	rv = rv.Elem()
	if err := CheckType(rv.Type()); err != nil {
		return err
	}

	var errs []error
	for _, sf := range fieldsOf(rv.Type()) {
		val, ok := r.Get(sf.key)
		if !ok {
			continue
		}
		field := rv.Field(sf.index)
		if err := setValue(field, val); err != nil {
			field.Set(reflect.Zero(field.Type()))
			errs = append(errs, &FieldError{Key: sf.key, Field: sf.name, Value: val, Err: err})
		}
	}
	return errors.Join(errs...)
}

func setValue(field reflect.Value, val Value) error {
	if field.Kind() == reflect.Ptr {
		if val.IsNull() {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := setValue(elem.Elem(), val); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}
	if val.IsNull() {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(val.Text())

	case reflect.Bool:
		if b, ok := val.BoolValue(); ok {
			field.SetBool(b)
			return nil
		}
		b, err := strconv.ParseBool(val.Text())
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(val.Text(), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(val.Text(), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(val.Text(), field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)

	default:
		return fmt.Errorf("unsupported kind %s", field.Kind())
	}
	return nil
}
