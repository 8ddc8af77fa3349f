// Package compiler turns a parsed filter expression into a predicate over
// instances of the root type.
package compiler

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/oakwood-commons/kvfilter/internal/syntax"
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// Predicate reports whether one instance matches. Predicates hold no
// reference to the expression they came from and are safe for concurrent
// use.
type Predicate func(any) bool

type matcher func(v reflect.Value) bool

// Compiler builds predicates. The zero value uses the shared classifier.
type Compiler struct {
	Classifier *typeinfo.Classifier
}

// Compile builds a predicate with the default Compiler.
func Compile(tree *syntax.Tree, root typeinfo.Descriptor) (Predicate, *syntax.Error) {
	var c Compiler
	return c.Compile(tree, root)
}

// Compile walks tree against root. The first error aborts the walk.
// An empty expression matches everything.
func (c *Compiler) Compile(tree *syntax.Tree, root typeinfo.Descriptor) (Predicate, *syntax.Error) {
	if tree.Empty() {
		return func(any) bool { return true }, nil
	}
	w := &walker{tree: tree, classifier: c.Classifier}
	m, err := w.condition(tree.Root, root)
	if err != nil {
		return nil, err
	}
	return func(x any) bool { return m(reflect.ValueOf(x)) }, nil
}

type walker struct {
	tree       *syntax.Tree
	classifier *typeinfo.Classifier
}

func (w *walker) classify(d typeinfo.Descriptor) typeinfo.Category {
	if w.classifier != nil {
		return w.classifier.Classify(d)
	}
	return typeinfo.Classify(d)
}

func (w *walker) fail(kind syntax.ErrorKind, token int32, cause error) *syntax.Error {
	return syntax.NewError(kind, w.tree.Lexemes[token], cause)
}

// condition compiles the node beneath a member of type d. Conditions on a
// sequence apply to some element unless they start with a sequence
// intrinsic.
func (w *walker) condition(i int32, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	if i == syntax.None {
		return w.bare(d), nil
	}
	el, ok := d.Element()
	switch {
	case !ok || w.sequenceIntrinsic(i):
		return w.node(i, d)
	case w.tree.Nodes[i].Kind.IsConjunction() && w.reachesSequence(i):
		return w.sequenceConjunction(i, d, el)
	}
	inner, err := w.condition(i, el)
	if err != nil {
		return nil, err
	}
	return anyElement(inner), nil
}

func (w *walker) sequenceIntrinsic(i int32) bool {
	n := w.tree.Nodes[i]
	if n.Kind != syntax.Member {
		return false
	}
	in, ok := typectx.LookupIntrinsic(w.tree.Lexemes[n.First].Text)
	return ok && in.OnSequence()
}

// reachesSequence reports whether a clause of the conjunction run at i
// starts with a sequence intrinsic.
func (w *walker) reachesSequence(i int32) bool {
	if w.sequenceIntrinsic(i) {
		return true
	}
	if !w.tree.Nodes[i].Kind.IsConjunction() {
		return false
	}
	for _, child := range w.tree.Flatten(i) {
		if w.reachesSequence(child) {
			return true
		}
	}
	return false
}

// sequenceConjunction compiles a conjunction beneath sequence d whose clauses
// mix sequence intrinsics with element conditions. Intrinsic clauses see the
// sequence; the element clauses are combined and must hold for one element.
func (w *walker) sequenceConjunction(i int32, d, el typeinfo.Descriptor) (matcher, *syntax.Error) {
	kind := w.tree.Nodes[i].Kind
	var whole, elems []matcher
	for _, child := range w.tree.Flatten(i) {
		if w.reachesSequence(child) {
			m, err := w.condition(child, d)
			if err != nil {
				return nil, err
			}
			whole = append(whole, m)
			continue
		}
		m, err := w.condition(child, el)
		if err != nil {
			return nil, err
		}
		elems = append(elems, m)
	}
	combine := allOf
	if kind == syntax.Or {
		combine = anyOf
	}
	if len(elems) > 0 {
		whole = append(whole, anyElement(combine(elems)))
	}
	return combine(whole), nil
}

func (w *walker) node(i int32, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	n := w.tree.Nodes[i]
	switch {
	case n.Kind.IsConjunction():
		children := w.tree.Flatten(i)
		ms := make([]matcher, 0, len(children))
		for _, child := range children {
			m, err := w.node(child, d)
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		if n.Kind == syntax.Or {
			return anyOf(ms), nil
		}
		return allOf(ms), nil
	case n.Kind == syntax.Member:
		if w.tree.Lexemes[n.First].Category == text.Intrinsic {
			return w.intrinsic(n, d)
		}
		return w.member(n, d)
	}
	return w.comparison(n, d)
}

func (w *walker) member(n syntax.Node, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	name := w.tree.Lexemes[n.First].Text
	m, ok := d.Lookup(name)
	if !ok {
		return nil, w.fail(syntax.MemberNotFound, n.First, fmt.Errorf("%s has no member %q", d, name))
	}
	inner, err := w.condition(n.Left, d.With(m.Type))
	if err != nil {
		return nil, err
	}
	insp := d.Inspector
	return func(v reflect.Value) bool {
		f, ok := insp.Field(v, m)
		if !ok {
			return false
		}
		return inner(f)
	}, nil
}

func (w *walker) intrinsic(n syntax.Node, d typeinfo.Descriptor) (matcher, *syntax.Error) {
	tok := w.tree.Lexemes[n.First].Text
	in, ok := typectx.LookupIntrinsic(tok)
	if !ok {
		return nil, w.fail(syntax.UnknownFragment, n.First, errors.New("unknown intrinsic"))
	}

	if in.OnSequence() {
		el, ok := d.Element()
		if !ok {
			return nil, w.fail(syntax.IntrinsicMismatch, n.First, fmt.Errorf("%s requires a sequence, have %s", in, d))
		}
		if n.Left == syntax.None && in != typectx.Any {
			return nil, w.fail(syntax.UnknownFragment, n.First, fmt.Errorf("%s requires a condition", in))
		}
		switch in {
		case typectx.Any:
			if n.Left == syntax.None {
				return nonEmpty, nil
			}
			inner, err := w.condition(n.Left, el)
			if err != nil {
				return nil, err
			}
			return anyElement(inner), nil
		case typectx.All:
			inner, err := w.condition(n.Left, el)
			if err != nil {
				return nil, err
			}
			return allElements(inner), nil
		}
		inner, err := w.condition(n.Left, in.Result(d))
		if err != nil {
			return nil, err
		}
		return func(v reflect.Value) bool {
			v, ok := deref(v)
			if !ok {
				return false
			}
			return inner(reflect.ValueOf(v.Len()))
		}, nil
	}

	if !w.classify(d.Underlying()).IsFloat() {
		return nil, w.fail(syntax.IntrinsicMismatch, n.First, fmt.Errorf("%s requires a floating point value, have %s", in, d))
	}
	if n.Left == syntax.None {
		return nil, w.fail(syntax.UnknownFragment, n.First, fmt.Errorf("%s requires a condition", in))
	}
	inner, err := w.condition(n.Left, in.Result(d))
	if err != nil {
		return nil, err
	}
	round := math.Round
	switch in {
	case typectx.Ceil:
		round = math.Ceil
	case typectx.Floor:
		round = math.Floor
	}
	return func(v reflect.Value) bool {
		v, ok := deref(v)
		if !ok {
			return false
		}
		return inner(reflect.ValueOf(int64(round(v.Float()))))
	}, nil
}

// bare is the test for a member written without a condition: true for
// booleans, non-empty for sequences, present for everything else.
func (w *walker) bare(d typeinfo.Descriptor) matcher {
	u := d.Underlying()
	switch w.classify(u) {
	case typeinfo.Bool:
		return func(v reflect.Value) bool {
			v, ok := deref(v)
			return ok && v.Bool()
		}
	case typeinfo.Sequence:
		return nonEmpty
	}
	return func(v reflect.Value) bool {
		_, ok := deref(v)
		return ok
	}
}

// deref follows pointers and interfaces. It reports false for nil and
// invalid values.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func nonEmpty(v reflect.Value) bool {
	v, ok := deref(v)
	return ok && v.Len() > 0
}

func anyElement(m matcher) matcher {
	return func(v reflect.Value) bool {
		v, ok := deref(v)
		if !ok {
			return false
		}
		for i := range v.Len() {
			if m(v.Index(i)) {
				return true
			}
		}
		return false
	}
}

// allElements holds vacuously for empty sequences.
func allElements(m matcher) matcher {
	return func(v reflect.Value) bool {
		v, ok := deref(v)
		if !ok {
			return false
		}
		for i := range v.Len() {
			if !m(v.Index(i)) {
				return false
			}
		}
		return true
	}
}

func allOf(ms []matcher) matcher {
	return func(v reflect.Value) bool {
		for _, m := range ms {
			if !m(v) {
				return false
			}
		}
		return true
	}
}

func anyOf(ms []matcher) matcher {
	return func(v reflect.Value) bool {
		for _, m := range ms {
			if m(v) {
				return true
			}
		}
		return false
	}
}
