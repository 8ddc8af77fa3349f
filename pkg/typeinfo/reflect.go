package typeinfo

import (
	"reflect"
	"strings"
	"sync"
)

// Struct tags read by ReflectInspector.
const (
	NameTag        = "filter"
	DescriptionTag = "desc"
)

var (
	enumSourceType  = reflect.TypeFor[EnumSource]()
	flagsSourceType = reflect.TypeFor[FlagsSource]()
)

// ReflectInspector inspects Go types with package reflect. Exported struct
// fields are members; a `filter:"name"` tag renames a field and `filter:"-"`
// hides it; `desc:"..."` supplies the description. Pointers and interfaces are
// nullable; slices and arrays are sequences.
//
// ReflectInspector is safe for concurrent use.
type ReflectInspector struct {
	enums   map[reflect.Type]*Enum
	members sync.Map // reflect.Type -> []Member
}

// Option configures a ReflectInspector.
type Option func(*ReflectInspector)

// WithEnum registers an enumeration for t.
func WithEnum(t reflect.Type, e Enum) Option {
	return func(r *ReflectInspector) {
		r.enums[t] = &e
	}
}

// NewReflectInspector returns a reflection-based Inspector.
func NewReflectInspector(opts ...Option) *ReflectInspector {
	r := &ReflectInspector{enums: map[reflect.Type]*Enum{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Of returns the descriptor of T backed by a new ReflectInspector.
func Of[T any](opts ...Option) Descriptor {
	return Descriptor{Type: reflect.TypeFor[T](), Inspector: NewReflectInspector(opts...)}
}

// Members implements Inspector.
func (r *ReflectInspector) Members(t reflect.Type) []Member {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := r.members.Load(t); ok {
		return cached.([]Member)
	}
	var members []Member
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(NameTag); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		members = append(members, Member{
			Name:        name,
			Type:        f.Type,
			Nullable:    r.Nullable(f.Type),
			Description: f.Tag.Get(DescriptionTag),
			Index:       f.Index,
		})
	}
	actual, _ := r.members.LoadOrStore(t, members)
	return actual.([]Member)
}

// Element implements Inspector. Strings are not sequences, nor are arrays
// and slices that parse from text, such as uuid.UUID or net.IP.
func (r *ReflectInspector) Element(t reflect.Type) (reflect.Type, bool) {
	if ParsesText(t) {
		return nil, false
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem(), true
	}
	return nil, false
}

// Nullable implements Inspector.
func (r *ReflectInspector) Nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	}
	return false
}

// Enum implements Inspector.
func (r *ReflectInspector) Enum(t reflect.Type) (*Enum, bool) {
	if e, ok := r.enums[t]; ok {
		return e, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return nil, false
	}
	if !t.Implements(enumSourceType) {
		return nil, false
	}
	zero := reflect.Zero(t).Interface()
	e := &Enum{Members: zero.(EnumSource).EnumMembers()}
	if t.Implements(flagsSourceType) {
		e.Flags = zero.(FlagsSource).Flags()
	}
	return e, true
}

// Field implements Inspector. The member is resolved against the dynamic type
// of v, so interface-typed parents work.
func (r *ReflectInspector) Field(v reflect.Value, m Member) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for _, cand := range r.Members(v.Type()) {
		if cand.Name != m.Name {
			continue
		}
		f, err := v.FieldByIndexErr(cand.Index)
		if err != nil {
			return reflect.Value{}, false
		}
		return f, true
	}
	return reflect.Value{}, false
}
