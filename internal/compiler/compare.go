package compiler

import (
	"cmp"
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/oakwood-commons/kvfilter/internal/syntax"
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

const nullLiteral = "null"

var errNotNullable = errors.New("value cannot be null")

// holds applies a comparison kind to the result of a three-way compare.
func holds(kind syntax.Kind, c int) bool {
	switch kind {
	case syntax.Eq:
		return c == 0
	case syntax.Ne:
		return c != 0
	case syntax.Lt:
		return c < 0
	case syntax.Le:
		return c <= 0
	case syntax.Gt:
		return c > 0
	case syntax.Ge:
		return c >= 0
	}
	return false
}

func ordered[T cmp.Ordered](kind syntax.Kind, want T, get func(reflect.Value) T) matcher {
	return func(v reflect.Value) bool {
		return holds(kind, cmp.Compare(get(v), want))
	}
}

func intValue(v reflect.Value) int64     { return v.Int() }
func uintValue(v reflect.Value) uint64   { return v.Uint() }
func floatValue(v reflect.Value) float64 { return v.Float() }
func stringValue(v reflect.Value) string { return v.String() }

// enumValue reads signed and unsigned enumerations alike.
func enumValue(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}
	return int64(v.Uint())
}

var bitSizes = map[typeinfo.Category]int{
	typeinfo.Int: strconv.IntSize, typeinfo.Int8: 8, typeinfo.Int16: 16, typeinfo.Int32: 32, typeinfo.Int64: 64,
	typeinfo.Uint: strconv.IntSize, typeinfo.Uint8: 8, typeinfo.Uint16: 16, typeinfo.Uint32: 32, typeinfo.Uint64: 64,
	typeinfo.Float32: 32, typeinfo.Float64: 64,
}

// comparison compiles an operator leaf against d.
func (w *walker) comparison(n syntax.Node, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	raw := w.tree.Lexemes[n.Last].Text
	if raw == nullLiteral {
		return w.null(n, d)
	}
	inner, err := w.compare(n, d.Underlying(), text.Unquote(raw))
	if err != nil {
		return nil, err
	}
	if !d.Nullable() {
		return inner, nil
	}
	// an absent value only satisfies !=
	absent := n.Kind == syntax.Ne
	return func(v reflect.Value) bool {
		v, ok := deref(v)
		if !ok {
			return absent
		}
		return inner(v)
	}, nil
}

func (w *walker) null(n syntax.Node, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	if n.Kind != syntax.Eq && n.Kind != syntax.Ne {
		return nil, w.fail(syntax.OperatorUnsupported, n.First, fmt.Errorf("%s cannot compare with null", n.Kind))
	}
	if !d.Nullable() {
		return nil, w.fail(syntax.LiteralParse, n.Last, fmt.Errorf("%s: %w", d, errNotNullable))
	}
	present := n.Kind == syntax.Ne
	return func(v reflect.Value) bool {
		_, ok := deref(v)
		return ok == present
	}, nil
}

func (w *walker) unsupported(n syntax.Node, cat typeinfo.Category) *syntax.Error {
	return w.fail(syntax.OperatorUnsupported, n.First, fmt.Errorf("%s is not supported for %s values", n.Kind, cat))
}

func (w *walker) literal(n syntax.Node, d typeinfo.Descriptor, err error) *syntax.Error {
	return w.fail(syntax.LiteralParse, n.Last, fmt.Errorf("not a valid %s: %w", d, err))
}

// compare dispatches on the category of u, the non-nullable target type.
func (w *walker) compare(n syntax.Node, u typeinfo.Descriptor, lit string) (matcher, *syntax.Error) {
	kind := n.Kind
	cat := w.classify(u)
	switch {
	case cat.IsInteger() && cat <= typeinfo.Int64:
		if kind == syntax.Match {
			return nil, w.unsupported(n, cat)
		}
		want, err := strconv.ParseInt(lit, 10, bitSizes[cat])
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		return ordered(kind, want, intValue), nil

	case cat.IsInteger():
		if kind == syntax.Match {
			return nil, w.unsupported(n, cat)
		}
		want, err := strconv.ParseUint(lit, 10, bitSizes[cat])
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		return ordered(kind, want, uintValue), nil

	case cat.IsFloat():
		if kind == syntax.Match {
			return nil, w.unsupported(n, cat)
		}
		want, err := strconv.ParseFloat(lit, bitSizes[cat])
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		return ordered(kind, want, floatValue), nil

	case cat == typeinfo.Bool:
		if kind != syntax.Eq && kind != syntax.Ne {
			return nil, w.unsupported(n, cat)
		}
		want, err := strconv.ParseBool(lit)
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		eq := kind == syntax.Eq
		return func(v reflect.Value) bool { return (v.Bool() == want) == eq }, nil

	case cat == typeinfo.String:
		if kind == syntax.Match {
			re, err := regexp.Compile(lit)
			if err != nil {
				return nil, w.fail(syntax.InvalidRegex, n.Last, err)
			}
			return func(v reflect.Value) bool { return re.MatchString(v.String()) }, nil
		}
		return ordered(kind, lit, stringValue), nil

	case cat == typeinfo.Ordered:
		if kind == syntax.Match {
			return nil, w.unsupported(n, cat)
		}
		want, err := parseText(u.Type, lit)
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		name, _ := typeinfo.CompareMethod(u.Type)
		method, _ := u.Type.MethodByName(name)
		return func(v reflect.Value) bool {
			out := method.Func.Call([]reflect.Value{v, want})
			return holds(kind, int(out[0].Int()))
		}, nil

	case cat == typeinfo.Equatable:
		if kind != syntax.Eq && kind != syntax.Ne {
			return nil, w.unsupported(n, cat)
		}
		want, err := parseText(u.Type, lit)
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		target := want.Interface()
		eq := kind == syntax.Eq
		return func(v reflect.Value) bool { return (v.Interface() == target) == eq }, nil

	case cat == typeinfo.Enumerated, cat == typeinfo.Flags:
		e, _ := u.Enum()
		want, err := e.Parse(lit)
		if err != nil {
			return nil, w.literal(n, u, err)
		}
		if kind == syntax.Match {
			if cat != typeinfo.Flags {
				return nil, w.unsupported(n, cat)
			}
			return func(v reflect.Value) bool { return enumValue(v)&want == want }, nil
		}
		return ordered(kind, want, enumValue), nil
	}
	return nil, w.fail(syntax.NoMatcher, n.First, fmt.Errorf("values of %s cannot be compared", u))
}

// parseText decodes lit into a new value of t through encoding.TextUnmarshaler.
func parseText(t reflect.Type, lit string) (reflect.Value, error) {
	ptr := reflect.New(t)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s does not parse from text", t)
	}
	if err := u.UnmarshalText([]byte(strings.TrimSpace(lit))); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
