// Package filter is the public face of the filter-expression language.
//
// An Editor holds one editing session: it takes keystrokes, keeps the
// type-aware completion candidates current, and compiles the finished
// expression into a Predicate. Compile and Filter cover the non-interactive
// case.
//
//	type Person struct {
//		Name string
//		Age  int
//	}
//
//	adults, err := filter.Filter(people, "Age >= 18, Name ~ \"^A\"")
package filter

import (
	"github.com/oakwood-commons/kvfilter/internal/completion"
	"github.com/oakwood-commons/kvfilter/internal/compiler"
	"github.com/oakwood-commons/kvfilter/internal/syntax"
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

//revive:disable:exported
type (
	Predicate      = compiler.Predicate
	Completion     = completion.Completion
	CompletionKind = completion.CompletionKind
	Record         = typectx.Record
	Lexeme         = text.Lexeme
	Span           = text.Span
	Direction      = text.Direction
	Error          = syntax.Error
	ErrorKind      = syntax.ErrorKind
	Tree           = syntax.Tree
)

const (
	PrevChar     = text.PrevChar
	NextChar     = text.NextChar
	StartOfToken = text.StartOfToken
	EndOfToken   = text.EndOfToken
	StartOfText  = text.StartOfText
	EndOfText    = text.EndOfText
)

const (
	CompletionMember      = completion.CompletionMember
	CompletionOperator    = completion.CompletionOperator
	CompletionLiteral     = completion.CompletionLiteral
	CompletionIntrinsic   = completion.CompletionIntrinsic
	CompletionConjunction = completion.CompletionConjunction
	CompletionGroup       = completion.CompletionGroup
	CompletionPlaceholder = completion.CompletionPlaceholder
)

var (
	ErrUnknownFragment     = syntax.ErrUnknownFragment
	ErrMemberNotFound      = syntax.ErrMemberNotFound
	ErrIntrinsicMismatch   = syntax.ErrIntrinsicMismatch
	ErrOperatorUnsupported = syntax.ErrOperatorUnsupported
	ErrLiteralParse        = syntax.ErrLiteralParse
	ErrNoMatcher           = syntax.ErrNoMatcher
	ErrInvalidRegex        = syntax.ErrInvalidRegex
)

//revive:enable:exported

// Compile parses expr and compiles it against root. The error, when not
// nil, is a *Error.
func Compile(expr string, root typeinfo.Descriptor) (Predicate, error) {
	tree, perr := syntax.Parse(text.Tokenize(expr).Lexemes())
	if perr != nil {
		return nil, perr
	}
	p, cerr := compiler.Compile(tree, root)
	if cerr != nil {
		return nil, cerr
	}
	return p, nil
}

// Filter returns the items matching expr, compiled against T with the
// reflect inspector.
func Filter[T any](items []T, expr string, opts ...typeinfo.Option) ([]T, error) {
	p, err := Compile(expr, typeinfo.Of[T](opts...))
	if err != nil {
		return nil, err
	}
	return Apply(items, p), nil
}

// Apply returns the items p accepts, in order.
func Apply[T any](items []T, p Predicate) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if p(it) {
			out = append(out, it)
		}
	}
	return out
}
