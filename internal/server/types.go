package server

import "github.com/oakwood-commons/kvfilter/pkg/filter"

// CompleteRequest asks for candidates at a cursor. A missing cursor means
// the end of the expression.
type CompleteRequest struct {
	Expression string `json:"expression"`
	Cursor     *int   `json:"cursor,omitempty"`
}

type CompleteResponse struct {
	Text         string              `json:"text"`
	Cursor       int                 `json:"cursor"`
	Query        string              `json:"query"`
	CurrentToken int                 `json:"currentToken"`
	Candidates   []filter.Completion `json:"candidates"`
	Context      *ContextBody        `json:"context,omitempty"`
	Error        *ErrorBody          `json:"error,omitempty"`
}

// ContextBody is the type context at the current token.
type ContextBody struct {
	Nearest   string `json:"nearest"`
	Enclosing string `json:"enclosing"`
	Depth     int    `json:"depth"`
	Frozen    bool   `json:"frozen,omitempty"`
}

type FilterRequest struct {
	Expression string `json:"expression"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
	Tail       int    `json:"tail,omitempty"`
}

type FilterResponse struct {
	Total   int   `json:"total"`
	Matched int   `json:"matched"`
	Items   []any `json:"items"`
}

type ErrorBody struct {
	Kind    string       `json:"kind,omitempty"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	Span    *filter.Span `json:"span,omitempty"`
}

type MemberBody struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Nullable    bool   `json:"nullable,omitempty"`
	Description string `json:"description,omitempty"`
}
