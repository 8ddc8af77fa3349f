// Package typeinfo defines the type-introspection capability the filter
// engine runs against.
//
// Every type-driven decision takes a Descriptor, which pairs a runtime type
// with the Inspector used to look into it. There is no global registry: hosts
// choose how members, elements, nullability and enumerations are discovered by
// passing their own Inspector, or use the reflection-based one from
// NewReflectInspector.
package typeinfo

import (
	"reflect"
	"strings"
)

// Member describes one filterable member of a type.
type Member struct {
	Name        string
	Type        reflect.Type
	Nullable    bool
	Description string
	// Index is the reflect field index path, when the member is a struct field.
	Index []int
}

// Inspector is the introspection capability supplied by the host.
//
// Implementations are used as cache keys and must be comparable; pointer
// receivers satisfy this.
type Inspector interface {
	// Members lists the members of t in display order.
	Members(t reflect.Type) []Member
	// Element returns the element type of t when t is a sequence.
	Element(t reflect.Type) (reflect.Type, bool)
	// Nullable reports whether values of t may be absent.
	Nullable(t reflect.Type) bool
	// Enum returns the enumeration definition of t, if any.
	Enum(t reflect.Type) (*Enum, bool)
	// Field resolves member m on the instance v.
	Field(v reflect.Value, m Member) (reflect.Value, bool)
}

// Descriptor is a type paired with the capability that inspects it.
type Descriptor struct {
	Type      reflect.Type
	Inspector Inspector
}

// Valid reports whether both halves are set.
func (d Descriptor) Valid() bool { return d.Type != nil && d.Inspector != nil }

// With returns a descriptor for t using the same inspector.
func (d Descriptor) With(t reflect.Type) Descriptor {
	return Descriptor{Type: t, Inspector: d.Inspector}
}

// Nullable reports whether the described type may be absent.
func (d Descriptor) Nullable() bool {
	return d.Valid() && d.Inspector.Nullable(d.Type)
}

// Underlying strips pointer indirections.
func (d Descriptor) Underlying() Descriptor {
	t := d.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return d.With(t)
}

// Element returns the element descriptor when the type is a sequence.
func (d Descriptor) Element() (Descriptor, bool) {
	if !d.Valid() {
		return Descriptor{}, false
	}
	u := d.Underlying()
	el, ok := d.Inspector.Element(u.Type)
	if !ok {
		return Descriptor{}, false
	}
	return d.With(el), true
}

// IsSequence reports whether the type has an element type.
func (d Descriptor) IsSequence() bool {
	_, ok := d.Element()
	return ok
}

// Members lists the members of the type, or of its element for sequences.
func (d Descriptor) Members() []Member {
	if !d.Valid() {
		return nil
	}
	if el, ok := d.Element(); ok {
		return el.Members()
	}
	return d.Inspector.Members(d.Underlying().Type)
}

// Lookup finds a member by name. An exact match wins over a case-insensitive
// one.
func (d Descriptor) Lookup(name string) (Member, bool) {
	members := d.Members()
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range members {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Member{}, false
}

// Enum returns the enumeration behind the type, if any.
func (d Descriptor) Enum() (*Enum, bool) {
	if !d.Valid() {
		return nil, false
	}
	return d.Inspector.Enum(d.Underlying().Type)
}

func (d Descriptor) String() string {
	if d.Type == nil {
		return "<none>"
	}
	return d.Type.String()
}
