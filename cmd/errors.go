package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/kvfilter/internal/formatter"
	"github.com/oakwood-commons/kvfilter/internal/ui"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
)

// exprError is a compile failure rendered with the expression and a caret
// under the offending token.
type exprError struct {
	expr string
	err  error
}

func newExprError(expr string, err error) error {
	return &exprError{expr: expr, err: err}
}

func (e *exprError) Error() string {
	var ferr *filter.Error
	if !errors.As(e.err, &ferr) {
		return e.err.Error()
	}
	const indent = "  "
	plain := func(s ...string) string { return strings.Join(s, "") }
	return fmt.Sprintf("%s\n%s%s\n%s", e.err, indent, e.expr, ui.Caret(e.expr, ferr.Span, len(indent), plain))
}

func (e *exprError) Unwrap() error { return e.err }

// formatFlag is a pflag.Value restricted to the formatter's formats.
type formatFlag struct {
	format formatter.Format
}

func (f *formatFlag) String() string { return string(f.format) }

func (f *formatFlag) Set(s string) error {
	v, err := formatter.ParseFormat(s)
	if err != nil {
		return err
	}
	f.format = v
	return nil
}

func (f *formatFlag) Type() string { return "format" }
