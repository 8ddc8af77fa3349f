// Package core loads untyped documents into filterable datasets. It is the
// entry point shared by the CLI and embedding applications.
package core

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/kvfilter/internal/cel"
	"github.com/oakwood-commons/kvfilter/internal/schema"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
	"github.com/oakwood-commons/kvfilter/pkg/loader"
	"github.com/oakwood-commons/kvfilter/pkg/logger"
)

// Selector picks the collection of records inside a loaded document.
type Selector interface {
	Select(expr string, doc any) (any, error)
}

// Engine loads documents and builds datasets from them.
type Engine struct {
	Selector Selector
	Hint     *schema.Hint
	log      logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithSelector sets a custom selector.
func WithSelector(s Selector) Option {
	return func(e *Engine) {
		e.Selector = s
	}
}

// WithHint sets the type hints applied to every dataset.
func WithHint(h *schema.Hint) Option {
	return func(e *Engine) {
		e.Hint = h
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an Engine with defaults: a CEL selector and no hints.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{log: logr.Discard()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Selector == nil {
		eval, err := cel.NewEvaluator()
		if err != nil {
			return nil, err
		}
		engine.Selector = eval
	}
	return engine, nil
}

// LoadHints reads a JSON Schema file (JSON or YAML).
func LoadHints(path string) (*schema.Hint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	hint, err := schema.ParseHints(data)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return hint, nil
}

// Build selects the records of root with from, when set, and builds the
// dataset.
func (e *Engine) Build(root any, from string) (*schema.Dataset, error) {
	if from != "" {
		var err error
		if root, err = e.Selector.Select(from, root); err != nil {
			return nil, err
		}
	}
	return schema.Build(root, e.Hint)
}

// LoadReader parses r and builds the dataset.
func (e *Engine) LoadReader(r io.Reader, from string) (*schema.Dataset, error) {
	root, format, err := loader.LoadReader(r)
	if err != nil {
		return nil, err
	}
	return e.build("stdin", format, root, from)
}

// LoadFile parses the file at path and builds the dataset.
func (e *Engine) LoadFile(path, from string) (*schema.Dataset, error) {
	root, format, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return e.build(path, format, root, from)
}

func (e *Engine) build(input string, format loader.Format, root any, from string) (*schema.Dataset, error) {
	ds, err := e.Build(root, from)
	if err != nil {
		return nil, err
	}
	e.log.V(1).Info("loaded", logger.InputKey, input, "format", string(format), "records", ds.Len())
	return ds, nil
}

// Filter returns the original records of ds matching expr.
func (e *Engine) Filter(ds *schema.Dataset, expr string) ([]any, error) {
	p, err := filter.Compile(expr, ds.Root())
	if err != nil {
		return nil, err
	}
	return ds.Select(p), nil
}
