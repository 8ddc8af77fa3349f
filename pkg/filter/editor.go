package filter

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvfilter/internal/completion"
	"github.com/oakwood-commons/kvfilter/internal/compiler"
	"github.com/oakwood-commons/kvfilter/internal/syntax"
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// Editor is one expression-editing session over a root type. Every edit
// re-derives tokens, type-context records, the parse tree and the candidate
// list from scratch.
//
// An Editor is not safe for concurrent use; predicates it returns are.
type Editor struct {
	root    typeinfo.Descriptor
	buf     *text.Buffer
	gen     *completion.Generator
	engine  *completion.CompletionEngine
	comp    compiler.Compiler
	history *History
	log     logr.Logger

	maxResults int

	lexemes []text.Lexeme
	records []typectx.Record
	tree    *syntax.Tree
	perr    *syntax.Error
	current int
	query   string
	cands   []completion.Completion
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. Refresh and compile events log at V(1).
func WithLogger(l logr.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithMaxResults caps the number of candidates; zero means no cap.
func WithMaxResults(n int) Option {
	return func(e *Editor) { e.maxResults = n }
}

// WithMaxComposites caps generated flag combinations.
func WithMaxComposites(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.gen.MaxComposites = n
		}
	}
}

// WithClassifier shares a classification cache between editors.
func WithClassifier(c *typeinfo.Classifier) Option {
	return func(e *Editor) {
		e.gen.Classifier = c
		e.comp.Classifier = c
	}
}

// WithHistory records successful compilations in h.
func WithHistory(h *History) Option {
	return func(e *Editor) { e.history = h }
}

// NewEditor starts an empty session over root.
func NewEditor(root typeinfo.Descriptor, opts ...Option) *Editor {
	e := &Editor{
		root: root,
		buf:  text.NewBuffer(),
		gen:  completion.NewGenerator(),
		log:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.engine = completion.NewEngine(e.gen, completion.WithMaxResults(e.maxResults))
	e.Refresh()
	return e
}

// Root returns the type the session filters.
func (e *Editor) Root() typeinfo.Descriptor { return e.root }

// History returns the session history, nil when none was configured.
func (e *Editor) History() *History { return e.history }

// Insert types s at the cursor.
func (e *Editor) Insert(s string) {
	e.buf.Insert(s)
	e.Refresh()
}

// Remove deletes from the cursor up to the target of dir.
func (e *Editor) Remove(dir Direction) {
	e.buf.Remove(dir)
	e.Refresh()
}

// Move moves the cursor.
func (e *Editor) Move(dir Direction) {
	e.buf.Move(dir)
	e.Refresh()
}

// SetCursor places the cursor at offset, clamped to the text.
func (e *Editor) SetCursor(offset int) {
	e.buf.SetCursor(offset)
	e.Refresh()
}

// ReplaceCurrentToken replaces the token under the cursor with s.
func (e *Editor) ReplaceCurrentToken(s string) {
	e.buf.ReplaceCurrentToken(s)
	e.Refresh()
}

// Accept replaces the token under the cursor with c and starts the next
// token. Placeholders carry no text and are not accepted.
func (e *Editor) Accept(c Completion) bool {
	if !c.Insertable() {
		return false
	}
	e.buf.ReplaceCurrentToken(c.Text)
	e.buf.Insert(" ")
	e.Refresh()
	return true
}

// Load replaces the whole text with expr, cursor at the end.
func (e *Editor) Load(expr string) {
	e.buf.Reset(expr)
	e.Refresh()
}

// Refresh recomputes every derived structure from the buffer. Edits call it
// themselves; calling it again without an edit yields identical results.
func (e *Editor) Refresh() {
	e.lexemes = e.buf.Lexemes()
	e.records = typectx.Track(e.lexemes, e.root)
	e.tree, e.perr = syntax.Parse(e.lexemes)
	e.current, e.query = e.buf.CurrentToken()

	var prev *text.Lexeme
	for i := e.current - 1; i >= 0; i-- {
		if e.lexemes[i].Text != "" {
			prev = &e.lexemes[i]
			break
		}
	}
	e.cands = e.engine.GetCompletions(e.query, prev, e.records[e.current])

	if e.log.V(1).Enabled() {
		e.log.V(1).Info("refresh",
			"text", e.buf.Render(),
			"cursor", e.buf.Cursor(),
			"tokens", len(e.lexemes),
			"token", e.current,
			"candidates", len(e.cands),
			"frozen", e.records[e.current].Frozen)
	}
}

// Text returns the expression with tokens joined by single spaces.
func (e *Editor) Text() string { return e.buf.Render() }

// Cursor returns the cursor offset.
func (e *Editor) Cursor() int { return e.buf.Cursor() }

// Len returns the length of the text in cursor addressing.
func (e *Editor) Len() int { return e.buf.Len() }

// Candidates returns the filtered completions at the cursor.
func (e *Editor) Candidates() []Completion { return e.cands }

// Query returns the part of the current token left of the cursor, the text
// the candidates were filtered against.
func (e *Editor) Query() string { return e.query }

// CurrentToken returns the index of the token under the cursor.
func (e *Editor) CurrentToken() int { return e.current }

// Lexemes returns the token snapshot, empty tokens included.
func (e *Editor) Lexemes() []Lexeme { return e.lexemes }

// Records returns one type-context record per token plus one past the end.
func (e *Editor) Records() []Record { return e.records }

// Tree returns the parse tree, or nil with ParseError set.
func (e *Editor) Tree() *Tree { return e.tree }

// ParseError returns the structural error of the current text, if any.
func (e *Editor) ParseError() *Error { return e.perr }

// Compile compiles the current text. On success the text is pushed to the
// history. The error, when not nil, is a *Error.
func (e *Editor) Compile() (Predicate, error) {
	p, err := e.Preview()
	if err != nil {
		e.log.V(1).Info("compile failed", "error", err.Error())
		return nil, err
	}
	if e.history != nil {
		e.history.Push(e.Text())
	}
	e.log.V(1).Info("compiled", "expression", e.Text())
	return p, nil
}

// Preview compiles the current text with the session's classifier but
// records nothing in the history. Live previews use it on every edit.
func (e *Editor) Preview() (Predicate, error) {
	if e.perr != nil {
		return nil, e.perr
	}
	p, err := e.comp.Compile(e.tree, e.root)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PrevHistory loads the previous history entry. It reports false when there
// is none.
func (e *Editor) PrevHistory() bool {
	if e.history == nil {
		return false
	}
	expr, ok := e.history.Prev()
	if ok {
		e.Load(expr)
	}
	return ok
}

// NextHistory loads the next history entry, or an empty text after the
// newest one.
func (e *Editor) NextHistory() bool {
	if e.history == nil {
		return false
	}
	expr, ok := e.history.Next()
	if ok {
		e.Load(expr)
	}
	return ok
}
