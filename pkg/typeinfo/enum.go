package typeinfo

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Name        string
	Value       int64
	Description string
}

// Enum describes a named-integer type.
type Enum struct {
	Members []EnumMember
	// Flags marks enumerations whose members combine with bitwise OR.
	Flags bool
}

// EnumSource is implemented by integer types that describe their own values.
type EnumSource interface {
	EnumMembers() []EnumMember
}

// FlagsSource is implemented by enumerations whose values are bit sets.
type FlagsSource interface {
	Flags() bool
}

// Lookup finds a member by name, exact match first.
func (e *Enum) Lookup(name string) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m, true
		}
	}
	for _, m := range e.Members {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Named reports whether v is the value of some member.
func (e *Enum) Named(v int64) bool {
	for _, m := range e.Members {
		if m.Value == v {
			return true
		}
	}
	return false
}

// Bits returns the members holding exactly one set bit, in declaration order.
func (e *Enum) Bits() []EnumMember {
	var out []EnumMember
	for _, m := range e.Members {
		if m.Value > 0 && bits.OnesCount64(uint64(m.Value)) == 1 {
			out = append(out, m)
		}
	}
	return out
}

// Parse converts a literal to a value: a member name, an integer, or for
// flags a comma-separated list of those.
func (e *Enum) Parse(s string) (int64, error) {
	if e.Flags && strings.Contains(s, ",") {
		var v int64
		for part := range strings.SplitSeq(s, ",") {
			pv, err := e.parseOne(strings.TrimSpace(part))
			if err != nil {
				return 0, err
			}
			v |= pv
		}
		return v, nil
	}
	return e.parseOne(s)
}

func (e *Enum) parseOne(s string) (int64, error) {
	if m, ok := e.Lookup(s); ok {
		return m.Value, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("not a member or integer value: %q", s)
	}
	return v, nil
}

// Format renders v as a member name, a comma-joined flag list, or a number.
func (e *Enum) Format(v int64) string {
	for _, m := range e.Members {
		if m.Value == v {
			return m.Name
		}
	}
	if e.Flags {
		var names []string
		rest := v
		for _, m := range e.Bits() {
			if rest&m.Value != 0 {
				names = append(names, m.Name)
				rest &^= m.Value
			}
		}
		if rest == 0 && len(names) > 0 {
			return strings.Join(names, ",")
		}
	}
	return strconv.FormatInt(v, 10)
}
