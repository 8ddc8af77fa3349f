package schema

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// ErrMismatch is returned when a value does not fit the inferred or hinted
// field type.
var ErrMismatch = errors.New("value does not match field type")

// Materialize converts one record into a value of t, a type built by Infer.
func Materialize(t reflect.Type, record any) (reflect.Value, error) {
	v := reflect.New(t).Elem()
	if err := assign(v, record, ""); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

func mismatch(path string, v any, t reflect.Type) error {
	if path == "" {
		path = "record"
	}
	return fmt.Errorf("%s: cannot use %T as %s: %w", path, v, t, ErrMismatch)
}

func assign(dst reflect.Value, v any, path string) error {
	if v == nil {
		return nil
	}
	t := dst.Type()
	switch t.Kind() {
	case reflect.Pointer:
		elem := reflect.New(t.Elem())
		if err := assign(elem.Elem(), v, path); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case reflect.Interface:
		dst.Set(reflect.ValueOf(v))
		return nil
	}

	if t == timeType {
		if tm, ok := v.(time.Time); ok {
			dst.Set(reflect.ValueOf(tm))
			return nil
		}
	}
	if u, ok := dst.Addr().Interface().(encoding.TextUnmarshaler); ok {
		s, ok := textOf(v)
		if !ok {
			return mismatch(path, v, t)
		}
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := toStringKeyMap(v)
		if !ok {
			return mismatch(path, v, t)
		}
		for i := range t.NumField() {
			f := t.Field(i)
			key := keyOf(f)
			if err := assign(dst.Field(i), m[key], join(path, key)); err != nil {
				return err
			}
		}
	case reflect.Slice:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return mismatch(path, v, t)
		}
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := range rv.Len() {
			if err := assign(out.Index(i), rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
	case reflect.Int64:
		n, ok := toInt64(v)
		if !ok {
			return mismatch(path, v, t)
		}
		dst.SetInt(n)
	case reflect.Float64:
		f, ok := toFloat64(v)
		if !ok {
			return mismatch(path, v, t)
		}
		dst.SetFloat(f)
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(path, v, t)
		}
		dst.SetBool(b)
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return mismatch(path, v, t)
		}
		dst.SetString(s)
	default:
		return mismatch(path, v, t)
	}
	return nil
}

// keyOf returns the record key a synthesized field was built from.
func keyOf(f reflect.StructField) string {
	if key, ok := f.Tag.Lookup(typeinfo.NameTag); ok {
		return key
	}
	return f.Name
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// textOf renders scalars for types that parse from text; numbers are
// accepted so decimal fields can hold JSON numbers.
func textOf(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case json.Number:
		return x.String(), true
	}
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), n == math.Trunc(n) && math.Abs(n) < 1<<63
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
