//revive:disable:exported
package completion

import (
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
)

// Provider produces the unfiltered completions for a position in the
// expression.
type Provider interface {
	// Candidates returns completions given the token before the one being
	// typed (nil at the start of the expression) and the type context in
	// force at the cursor.
	Candidates(prev *text.Lexeme, rec typectx.Record) []Completion
}

// Completion represents a single completion suggestion.
type Completion struct {
	Text        string         `json:"text"`                  // The text to insert; empty for placeholders
	Kind        CompletionKind `json:"kind"`                  // Type of completion
	Detail      string         `json:"detail,omitempty"`      // Type name or operator class
	Description string         `json:"description,omitempty"` // Human-readable description
}

// CompletionKind indicates the type of completion.
type CompletionKind int

const (
	CompletionMember      CompletionKind = iota // Member of the current type
	CompletionOperator                          // Comparison operator
	CompletionLiteral                           // Literal value (true, enum member, null)
	CompletionIntrinsic                         // Dot intrinsic
	CompletionConjunction                       // , | &
	CompletionGroup                             // Opening parenthesis
	CompletionPlaceholder                       // Free input expected
)

var kindNames = [...]string{
	CompletionMember:      "member",
	CompletionOperator:    "operator",
	CompletionLiteral:     "literal",
	CompletionIntrinsic:   "intrinsic",
	CompletionConjunction: "conjunction",
	CompletionGroup:       "group",
	CompletionPlaceholder: "placeholder",
}

func (k CompletionKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k CompletionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Insertable reports whether the completion carries text to insert.
func (c Completion) Insertable() bool { return c.Kind != CompletionPlaceholder && c.Text != "" }

// CompletionEngine wraps a Provider and adds filtering against the typed
// text and the result limit.
type CompletionEngine struct {
	provider   Provider
	maxResults int
}

//revive:enable:exported

// EngineOption configures a CompletionEngine.
type EngineOption func(*CompletionEngine)

// WithMaxResults caps the number of completions returned; zero means no cap.
func WithMaxResults(n int) EngineOption {
	return func(e *CompletionEngine) {
		e.maxResults = n
	}
}

// NewEngine creates a new completion engine with the given provider.
func NewEngine(provider Provider, opts ...EngineOption) *CompletionEngine {
	e := &CompletionEngine{provider: provider}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetCompletions returns the completions at a position, filtered against
// query, the part of the current token left of the cursor.
func (e *CompletionEngine) GetCompletions(query string, prev *text.Lexeme, rec typectx.Record) []Completion {
	out := Filter(e.provider.Candidates(prev, rec), query)
	if e.maxResults > 0 && len(out) > e.maxResults {
		out = out[:e.maxResults]
	}
	return out
}
