package syntax

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/kvfilter/internal/text"
)

// ErrorKind classifies compile-time failures.
type ErrorKind uint8

const (
	UnknownFragment ErrorKind = iota + 1
	MemberNotFound
	IntrinsicMismatch
	OperatorUnsupported
	LiteralParse
	NoMatcher
	InvalidRegex
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrUnknownFragment     = errors.New("unknown fragment")
	ErrMemberNotFound      = errors.New("member not found")
	ErrIntrinsicMismatch   = errors.New("intrinsic not applicable")
	ErrOperatorUnsupported = errors.New("operator not supported")
	ErrLiteralParse        = errors.New("invalid literal")
	ErrNoMatcher           = errors.New("no matcher for type")
	ErrInvalidRegex        = errors.New("invalid regular expression")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnknownFragment:
		return ErrUnknownFragment
	case MemberNotFound:
		return ErrMemberNotFound
	case IntrinsicMismatch:
		return ErrIntrinsicMismatch
	case OperatorUnsupported:
		return ErrOperatorUnsupported
	case LiteralParse:
		return ErrLiteralParse
	case NoMatcher:
		return ErrNoMatcher
	case InvalidRegex:
		return ErrInvalidRegex
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return "error"
}

// Error is a failure attributed to one token of the expression.
type Error struct {
	Kind  ErrorKind
	Span  text.Span
	Token string
	Cause error
}

// NewError builds an error pointing at lx.
func NewError(kind ErrorKind, lx text.Lexeme, cause error) *Error {
	return &Error{Kind: kind, Span: lx.Span, Token: lx.Text, Cause: cause}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s at %d", e.Kind, e.Span.Start)
	if e.Token != "" {
		msg = fmt.Sprintf("%s %q at %d", e.Kind, e.Token, e.Span.Start)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
