// Package schema synthesizes Go types for untyped records so that loaded
// YAML, JSON and TOML data can be filtered with the same reflect-based
// inspector as native structs.
package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

var (
	anyType     = reflect.TypeFor[any]()
	timeType    = reflect.TypeFor[time.Time]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
	decimalType = reflect.TypeFor[decimal.Decimal]()
)

// Infer returns a struct type able to hold every record. Field names are
// exported Go identifiers derived from the keys; the original key is the
// member name through the filter tag.
func Infer(records []map[string]any, hint *Hint) reflect.Type {
	root := &shape{}
	for _, r := range records {
		root.observe(r)
	}
	if root.kind != shapeObject {
		return reflect.TypeFor[struct{}]()
	}
	return structOf(root, hint)
}

func structOf(s *shape, hint *Hint) reflect.Type {
	fields := make([]reflect.StructField, 0, len(s.order))
	used := map[string]bool{}
	for _, key := range s.order {
		h := hint.Property(key)
		if h != nil && h.Hidden {
			continue
		}
		f := s.fields[key]
		t := typeOf(f, h)
		if (s.optional(f) || f.nullable || (h != nil && h.Nullable)) && nullable(t) {
			t = reflect.PointerTo(t)
		}
		name := goName(key, used)
		var tag []string
		if key != name && key != "-" && !strings.Contains(key, ",") {
			tag = append(tag, typeinfo.NameTag+":"+strconv.Quote(key))
		}
		if h != nil && h.Description != "" {
			tag = append(tag, typeinfo.DescriptionTag+":"+strconv.Quote(h.Description))
		}
		fields = append(fields, reflect.StructField{
			Name: name,
			Type: t,
			Tag:  reflect.StructTag(strings.Join(tag, " ")),
		})
	}
	return reflect.StructOf(fields)
}

// nullable reports whether absent values of t need a pointer to be told
// apart from zero values.
func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map, reflect.Pointer:
		return false
	}
	return true
}

// typeOf picks the Go type for one position. A hint with a known type or
// format wins over the observed data.
func typeOf(s *shape, h *Hint) reflect.Type {
	if t, ok := hintedType(h); ok {
		return t
	}
	switch s.kind {
	case shapeBool:
		return reflect.TypeFor[bool]()
	case shapeInt:
		return reflect.TypeFor[int64]()
	case shapeFloat:
		return reflect.TypeFor[float64]()
	case shapeString:
		return reflect.TypeFor[string]()
	case shapeTime:
		return timeType
	case shapeObject:
		return structOf(s, h)
	case shapeList:
		if s.elem == nil {
			return reflect.TypeFor[[]any]()
		}
		return reflect.SliceOf(typeOf(s.elem, h.Element()))
	}
	return anyType
}

func hintedType(h *Hint) (reflect.Type, bool) {
	if h == nil {
		return nil, false
	}
	switch h.Format {
	case "date-time":
		return timeType, true
	case "uuid":
		return uuidType, true
	case "decimal":
		return decimalType, true
	}
	switch h.Type {
	case "integer":
		return reflect.TypeFor[int64](), true
	case "number":
		return reflect.TypeFor[float64](), true
	case "boolean":
		return reflect.TypeFor[bool](), true
	case "string":
		return reflect.TypeFor[string](), true
	}
	return nil, false
}

// goName turns key into a unique exported identifier: "first_name" becomes
// FirstName, "2fa" becomes F2fa.
func goName(key string, used map[string]bool) string {
	var sb strings.Builder
	upper := true
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if first := []rune(name + "_"); !unicode.IsUpper(first[0]) {
		name = "F" + name
	}
	base := name
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	used[name] = true
	return name
}
