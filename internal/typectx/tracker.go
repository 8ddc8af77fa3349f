// Package typectx replays a token list against the type-introspection
// capability to find the member type in force at every token position.
package typectx

import (
	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

// Record is the type context in force at one token position.
type Record struct {
	// Nearest is the type of the most recently resolved member.
	Nearest typeinfo.Descriptor
	// Enclosing is the type clauses restart from after , | & and the type
	// restored by ).
	Enclosing typeinfo.Descriptor
	// Depth is the number of open parentheses.
	Depth int
	// Value marks a position right after a literal value.
	Value bool
	// Frozen marks positions after a token that could not be resolved.
	Frozen bool
}

type frame struct {
	nearest, enclosing typeinfo.Descriptor
}

type tracker struct {
	rec         Record
	stack       []frame
	expectValue bool
}

// Track returns len(lexemes)+1 records. Record i is the context before token
// i, so the record at the token being typed describes what may complete it.
// Tracking never fails: an unresolvable token freezes the context.
func Track(lexemes []text.Lexeme, root typeinfo.Descriptor) []Record {
	tr := &tracker{rec: Record{Nearest: root, Enclosing: root}}
	out := make([]Record, 0, len(lexemes)+1)
	out = append(out, tr.rec)
	for _, lx := range lexemes {
		if !tr.rec.Frozen {
			tr.step(lx)
		}
		out = append(out, tr.rec)
	}
	return out
}

func (tr *tracker) freeze() { tr.rec.Frozen = true }

func (tr *tracker) step(lx text.Lexeme) {
	if lx.Category == text.Empty {
		return
	}
	if tr.expectValue && lx.Category != text.Symbol {
		tr.expectValue = false
		tr.rec.Value = true
		return
	}
	tr.expectValue = false
	tr.rec.Value = false

	switch lx.Category {
	case text.Operator:
		tr.expectValue = true
	case text.Symbol:
		tr.symbol(lx.Text)
	case text.Identifier:
		m, ok := tr.rec.Nearest.Lookup(lx.Text)
		if !ok {
			tr.freeze()
			return
		}
		tr.rec.Nearest = tr.rec.Nearest.With(m.Type)
	case text.Intrinsic:
		in, ok := LookupIntrinsic(lx.Text)
		if !ok {
			tr.freeze()
			return
		}
		tr.rec.Nearest = in.Result(tr.rec.Nearest)
	default:
		tr.freeze()
	}
}

func (tr *tracker) symbol(s string) {
	switch s {
	case "(":
		tr.stack = append(tr.stack, frame{nearest: tr.rec.Nearest, enclosing: tr.rec.Enclosing})
		tr.rec.Enclosing = tr.rec.Nearest
		tr.rec.Depth++
	case ")":
		if len(tr.stack) == 0 {
			tr.freeze()
			return
		}
		top := tr.stack[len(tr.stack)-1]
		tr.stack = tr.stack[:len(tr.stack)-1]
		tr.rec.Nearest = top.nearest
		tr.rec.Enclosing = top.enclosing
		tr.rec.Depth--
	default:
		tr.rec.Nearest = tr.rec.Enclosing
	}
}
