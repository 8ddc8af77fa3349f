package schema

import (
	"encoding/json"
	"math"
	"reflect"
	"time"
)

// shapeKind is a point in the inference lattice. Two different kinds merge
// to mixed, except int and float which merge to float.
type shapeKind uint8

const (
	shapeNone shapeKind = iota // only nulls seen
	shapeBool
	shapeInt
	shapeFloat
	shapeString
	shapeTime
	shapeObject
	shapeList
	shapeMixed
)

// shape accumulates what the data says about one position.
type shape struct {
	kind     shapeKind
	nullable bool

	// objects counts map observations; a field seen fewer times is optional.
	objects int
	seen    int
	fields  map[string]*shape
	order   []string

	elem *shape
}

func (s *shape) merge(k shapeKind) {
	switch {
	case s.kind == shapeNone || s.kind == k:
		s.kind = k
	case (s.kind == shapeInt && k == shapeFloat) || (s.kind == shapeFloat && k == shapeInt):
		s.kind = shapeFloat
	default:
		s.kind = shapeMixed
	}
}

// observe folds one value into s.
func (s *shape) observe(v any) {
	s.seen++
	if v == nil {
		s.nullable = true
		return
	}
	if m, ok := toStringKeyMap(v); ok {
		s.merge(shapeObject)
		s.objects++
		if s.fields == nil {
			s.fields = map[string]*shape{}
		}
		for _, key := range sortedKeys(m) {
			f, ok := s.fields[key]
			if !ok {
				f = &shape{}
				s.fields[key] = f
				s.order = append(s.order, key)
			}
			f.observe(m[key])
		}
		return
	}
	switch x := v.(type) {
	case bool:
		s.merge(shapeBool)
	case string:
		s.merge(shapeString)
	case time.Time:
		s.merge(shapeTime)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s.merge(shapeInt)
	case float32:
		s.merge(floatKind(float64(x)))
	case float64:
		s.merge(floatKind(x))
	case json.Number:
		if _, err := x.Int64(); err == nil {
			s.merge(shapeInt)
		} else {
			s.merge(shapeFloat)
		}
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			s.merge(shapeMixed)
			return
		}
		s.merge(shapeList)
		if s.elem == nil {
			s.elem = &shape{}
		}
		for i := range rv.Len() {
			s.elem.observe(rv.Index(i).Interface())
		}
	}
}

// optional reports whether field f was absent from some of the objects.
func (s *shape) optional(f *shape) bool {
	return f.seen < s.objects
}

// floatKind treats integral floats as integers; JSON decodes every number
// as float64.
func floatKind(f float64) shapeKind {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return shapeInt
	}
	return shapeFloat
}

// toStringKeyMap attempts to convert a value to a map with string keys.
func toStringKeyMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	// Use reflection for other map types with string keys
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	if rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	result := make(map[string]any, rv.Len())
	for _, key := range rv.MapKeys() {
		result[key.String()] = rv.MapIndex(key).Interface()
	}
	return result, true
}
