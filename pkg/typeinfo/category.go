package typeinfo

import (
	"encoding"
	"reflect"
	"sync"
)

// Category is the closed set of type shapes the engine distinguishes when
// offering operators and building comparers.
type Category uint8

const (
	Opaque Category = iota
	Int
	Int8
	Int16
	Int32
	Int64
	Uint
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bool
	String
	// Ordered types have Compare(T) int or Cmp(T) int and parse from text.
	Ordered
	// Equatable types are comparable with == and parse from text.
	Equatable
	Enumerated
	Flags
	Nullable
	Sequence
	Object
)

var categoryNames = [...]string{
	Opaque:     "opaque",
	Int:        "int",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint:       "uint",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	Bool:       "bool",
	String:     "string",
	Ordered:    "ordered",
	Equatable:  "equatable",
	Enumerated: "enum",
	Flags:      "flags",
	Nullable:   "nullable",
	Sequence:   "sequence",
	Object:     "object",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "opaque"
}

// IsInteger reports whether c is a signed or unsigned integer width.
func (c Category) IsInteger() bool { return c >= Int && c <= Uint64 }

// IsFloat reports whether c is a floating point width.
func (c Category) IsFloat() bool { return c == Float32 || c == Float64 }

// IsNumeric reports whether c is an integer or floating point width.
func (c Category) IsNumeric() bool { return c.IsInteger() || c.IsFloat() }

// IsOrdered reports whether values of c support < and >.
func (c Category) IsOrdered() bool {
	return c.IsNumeric() || c == String || c == Ordered || c == Enumerated || c == Flags
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// CompareMethod returns the name of the total-order method of t, if it has
// one of the form func(T) int.
func CompareMethod(t reflect.Type) (string, bool) {
	for _, name := range []string{"Compare", "Cmp"} {
		m, ok := t.MethodByName(name)
		if !ok {
			continue
		}
		ft := m.Type
		if ft.NumIn() == 2 && ft.In(1) == t && ft.NumOut() == 1 && ft.Out(0).Kind() == reflect.Int {
			return name, true
		}
	}
	return "", false
}

// ParsesText reports whether *t implements encoding.TextUnmarshaler.
func ParsesText(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

type classKey struct {
	t reflect.Type
	i Inspector
}

// Classifier memoizes the category of each (type, inspector) pair. The zero
// value is ready to use and safe for concurrent use.
type Classifier struct {
	cache sync.Map // classKey -> Category
}

var defaultClassifier Classifier

// Classify returns the category of d using a process-wide Classifier.
func Classify(d Descriptor) Category { return defaultClassifier.Classify(d) }

// Classify returns the category of d, probing capabilities once per type.
func (c *Classifier) Classify(d Descriptor) Category {
	if !d.Valid() {
		return Opaque
	}
	key := classKey{t: d.Type, i: d.Inspector}
	if v, ok := c.cache.Load(key); ok {
		return v.(Category)
	}
	cat := classify(d)
	c.cache.Store(key, cat)
	return cat
}

func classify(d Descriptor) Category {
	t := d.Type
	if d.Inspector.Nullable(t) && t.Kind() == reflect.Pointer {
		return Nullable
	}
	if e, ok := d.Inspector.Enum(t); ok {
		if e.Flags {
			return Flags
		}
		return Enumerated
	}
	if ParsesText(t) {
		if _, ok := CompareMethod(t); ok {
			return Ordered
		}
		if t.Comparable() && t.Kind() != reflect.Interface {
			return Equatable
		}
	}
	switch t.Kind() {
	case reflect.Int:
		return Int
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint:
		return Uint
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	case reflect.Bool:
		return Bool
	case reflect.String:
		return String
	}
	if _, ok := d.Inspector.Element(t); ok {
		return Sequence
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Interface:
		return Object
	}
	return Opaque
}
