// Package ui is the interactive filter editor: a Bubble Tea model that
// drives a filter.Editor, lists completion candidates and previews the
// matching records as the expression is typed.
package ui

import (
	"errors"

	"charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/kvfilter/internal/formatter"
	"github.com/oakwood-commons/kvfilter/internal/schema"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
)

const (
	defaultWidth   = 80
	defaultHeight  = 24
	maxCandidates  = 8
	maxPreviewRows = 200
	// prompt, caret, status and help lines around the candidate list
	chromeLines = 5
)

// Options configure a Model.
type Options struct {
	Expression string
	NoColor    bool
	Theme      *Theme
	Editor     []filter.Option
}

// Result is the outcome of a session.
type Result struct {
	Expression string
	Items      []any
	Canceled   bool
}

// Model is the Bubble Tea model of the editor.
type Model struct {
	editor   *filter.Editor
	ds       *schema.Dataset
	styles   styles
	results  table.Model
	columns  []string
	selected int

	matched []any
	err     error
	// applied is the last expression recorded with enter
	applied string

	width, height int
	done          bool
	canceled      bool
}

// New creates a model over ds.
func New(ds *schema.Dataset, opts Options) *Model {
	th := DefaultTheme()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	m := &Model{
		editor:   filter.NewEditor(ds.Root(), editorOptions(opts)...),
		ds:       ds,
		styles:   newStyles(th, opts.NoColor),
		selected: -1,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.columns = formatter.Columns(ds.Sources)
	m.results = table.New(
		table.WithColumns(m.tableColumns()),
		table.WithFocused(false),
		table.WithHeight(5),
	)
	m.results.SetStyles(tableStyles(th, opts.NoColor))
	if opts.Expression != "" {
		m.editor.Load(opts.Expression)
	}
	m.evaluate()
	m.layout()
	return m
}

// editorOptions gives the session a history unless the caller supplies one.
func editorOptions(opts Options) []filter.Option {
	out := []filter.Option{filter.WithHistory(filter.NewHistory(filter.DefaultHistorySize))}
	return append(out, opts.Editor...)
}

// Editor returns the underlying editor.
func (m *Model) Editor() *filter.Editor { return m.editor }

// Result reports the accepted expression and its matches, or Canceled.
func (m *Model) Result() Result {
	if m.canceled || !m.done {
		return Result{Canceled: true}
	}
	return Result{Expression: m.editor.Text(), Items: m.matched}
}

// Selected returns the highlighted candidate index, or -1.
func (m *Model) Selected() int { return m.selected }

// Matched returns the records matching the current expression.
func (m *Model) Matched() []any { return m.matched }

// Err returns the current compile error.
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if act, ok := KeyBindings[key]; ok {
		return m.apply(act)
	}
	if msg.Text == "" {
		return nil
	}
	m.editor.Insert(msg.Text)
	m.edited()
	return nil
}

func (m *Model) apply(act Action) tea.Cmd {
	cands := m.editor.Candidates()
	switch act {
	case ActionQuit:
		m.canceled = true
		return tea.Quit
	case ActionNext:
		if len(cands) > 0 {
			m.selected = (m.selected + 1) % len(cands)
		}
		return nil
	case ActionPrev:
		if len(cands) > 0 {
			m.selected = (m.selected - 1 + len(cands)) % len(cands)
		}
		return nil
	case ActionAccept:
		if m.selected >= 0 && m.selected < len(cands) {
			if m.editor.Accept(cands[m.selected]) {
				m.edited()
			}
			return nil
		}
		return m.run(m.applied != "" && m.applied == m.editor.Text())
	case ActionRun:
		return m.run(true)
	case ActionHistoryPrev:
		if m.editor.PrevHistory() {
			m.edited()
		}
		return nil
	case ActionHistoryNext:
		if m.editor.NextHistory() {
			m.edited()
		}
		return nil
	}
	if dir, ok := moves[act]; ok {
		m.editor.Move(dir)
		m.selected = -1
		return nil
	}
	if dir, ok := removals[act]; ok {
		m.editor.Remove(dir)
		m.edited()
	}
	return nil
}

// run compiles the expression and records it in the history. With finish
// the session ends with the expression as its result; otherwise the editor
// stays open on the applied expression.
func (m *Model) run(finish bool) tea.Cmd {
	if _, err := m.editor.Compile(); err != nil {
		m.setError(err)
		return nil
	}
	m.applied = m.editor.Text()
	if !finish {
		return nil
	}
	m.done = true
	return tea.Quit
}

// edited resets the selection and re-runs the preview after a text change.
func (m *Model) edited() {
	m.selected = -1
	m.evaluate()
}

// evaluate compiles the current text and refreshes the preview. Errors are
// expected while typing; they empty the preview and show in the status line.
func (m *Model) evaluate() {
	p, err := m.editor.Preview()
	if err != nil {
		m.setError(err)
		return
	}
	m.err = nil
	m.matched = m.ds.Select(p)
	rows := make([]table.Row, 0, min(len(m.matched), maxPreviewRows))
	for i, it := range m.matched {
		if i == maxPreviewRows {
			break
		}
		row := make(table.Row, len(m.columns))
		for c, col := range m.columns {
			if rec, ok := it.(map[string]any); ok {
				row[c] = formatter.Stringify(rec[col])
			}
		}
		rows = append(rows, row)
	}
	m.results.SetRows(rows)
}

// setError reports err and drops the preview of the previous expression.
func (m *Model) setError(err error) {
	m.err = err
	m.matched = nil
	m.results.SetRows(nil)
}

// filterError returns the error as a positioned filter error, if it is one.
func filterError(err error) (*filter.Error, bool) {
	var ferr *filter.Error
	if errors.As(err, &ferr) {
		return ferr, true
	}
	return nil, false
}

func (m *Model) tableColumns() []table.Column {
	if len(m.columns) == 0 {
		return []table.Column{{Title: "(no columns)", Width: 12}}
	}
	per := max(m.width/len(m.columns)-1, 4)
	cols := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		cols[i] = table.Column{Title: c, Width: per}
	}
	return cols
}

func (m *Model) layout() {
	m.results.SetColumns(m.tableColumns())
	m.results.SetWidth(m.width)
	m.results.SetHeight(max(m.height-chromeLines-maxCandidates, 3))
}
