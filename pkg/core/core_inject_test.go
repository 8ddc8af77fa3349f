package core

import (
	"errors"
	"testing"
)

type fakeSelector struct {
	expr   string
	doc    any
	result any
	err    error
}

func (f *fakeSelector) Select(expr string, doc any) (any, error) {
	f.expr = expr
	f.doc = doc
	return f.result, f.err
}

func TestEngineUsesInjectedSelector(t *testing.T) {
	sel := &fakeSelector{result: []any{map[string]any{"k": "v"}}}
	engine, err := New(WithSelector(sel))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	root := map[string]any{"wrapped": true}
	ds, err := engine.Build(root, "pick")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if sel.expr != "pick" {
		t.Fatalf("selector expr = %q, want %q", sel.expr, "pick")
	}
	if sel.doc == nil {
		t.Fatalf("selector did not receive the document")
	}
	if ds.Len() != 1 {
		t.Fatalf("Len = %d, want 1", ds.Len())
	}
}

func TestEngineSkipsSelectorWithoutExpression(t *testing.T) {
	sel := &fakeSelector{err: errors.New("should not be called")}
	engine, err := New(WithSelector(sel))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := engine.Build([]any{map[string]any{"a": 1}}, ""); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if sel.expr != "" {
		t.Fatalf("selector called with %q", sel.expr)
	}
}

func TestEngineSelectorError(t *testing.T) {
	boom := errors.New("boom")
	engine, err := New(WithSelector(&fakeSelector{err: boom}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := engine.Build(map[string]any{}, "x"); !errors.Is(err, boom) {
		t.Fatalf("Build error = %v, want %v", err, boom)
	}
}
