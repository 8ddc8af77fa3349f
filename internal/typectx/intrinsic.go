package typectx

import (
	"reflect"

	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// Intrinsic is a synthetic pseudo-member written with a leading dot.
type Intrinsic uint8

const (
	NotIntrinsic Intrinsic = iota
	Any
	All
	Length
	Ceil
	Floor
	Round
)

// IntrinsicInfo describes one intrinsic for display.
type IntrinsicInfo struct {
	Intrinsic   Intrinsic
	Name        string
	Description string
}

// Intrinsics lists every intrinsic in display order.
var Intrinsics = []IntrinsicInfo{
	{Any, ".any", "some element matches"},
	{All, ".all", "every element matches"},
	{Length, ".length", "number of elements"},
	{Ceil, ".ceil", "round up to an integer"},
	{Floor, ".floor", "round down to an integer"},
	{Round, ".round", "round half away from zero"},
}

// LookupIntrinsic resolves the text of an intrinsic token.
func LookupIntrinsic(s string) (Intrinsic, bool) {
	for _, info := range Intrinsics {
		if info.Name == s {
			return info.Intrinsic, true
		}
	}
	return NotIntrinsic, false
}

func (in Intrinsic) String() string {
	for _, info := range Intrinsics {
		if info.Intrinsic == in {
			return info.Name
		}
	}
	return "intrinsic"
}

// Description returns the display text of the intrinsic.
func (in Intrinsic) Description() string {
	for _, info := range Intrinsics {
		if info.Intrinsic == in {
			return info.Description
		}
	}
	return ""
}

// OnSequence reports whether the intrinsic applies to sequences.
func (in Intrinsic) OnSequence() bool { return in == Any || in == All || in == Length }

// Rounding reports whether the intrinsic converts floats to integers.
func (in Intrinsic) Rounding() bool { return in == Ceil || in == Floor || in == Round }

var (
	lengthType  = reflect.TypeFor[int]()
	roundedType = reflect.TypeFor[int64]()
)

// Result returns the descriptor in force after applying the intrinsic to d.
// .any and .all keep d; the others yield fixed integer types.
func (in Intrinsic) Result(d typeinfo.Descriptor) typeinfo.Descriptor {
	switch {
	case in == Length:
		return d.With(lengthType)
	case in.Rounding():
		return d.With(roundedType)
	}
	return d
}
