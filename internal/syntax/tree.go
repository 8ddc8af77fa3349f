// Package syntax parses a token list into a flat, index-addressed tree.
package syntax

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/kvfilter/internal/text"
)

// Kind is the node kind of an arena entry.
type Kind uint8

const (
	Member Kind = iota
	Comma
	Or
	And
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Match
)

var kindNames = [...]string{
	Member: "member",
	Comma:  ",",
	Or:     "|",
	And:    "&",
	Eq:     "=",
	Ne:     "!=",
	Lt:     "<",
	Le:     "<=",
	Gt:     ">",
	Ge:     ">=",
	Match:  "~",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsComparison reports whether k is a leaf comparing against a literal.
func (k Kind) IsComparison() bool { return k >= Eq }

// IsConjunction reports whether k joins clauses.
func (k Kind) IsConjunction() bool { return k == Comma || k == Or || k == And }

// OperatorKind maps operator text to its node kind.
func OperatorKind(op string) (Kind, bool) {
	for k := Eq; k <= Match; k++ {
		if kindNames[k] == op {
			return k, true
		}
	}
	return 0, false
}

// None marks an absent child.
const None int32 = -1

// Node is a fixed-size arena entry. First and Last index the token list;
// Left and Right index Tree.Nodes.
//
// Member: First is the name token, Left the optional condition.
// Comparison: First is the operator token, Last the literal token.
// Comma, Or, And: Left and Right are the operands.
type Node struct {
	First, Last int32
	Kind        Kind
	Left, Right int32
}

// Tree is the result of one parse. Nodes are never mutated after creation.
type Tree struct {
	Nodes   []Node
	Root    int32
	Lexemes []text.Lexeme
}

// Empty reports whether the expression had no tokens.
func (t *Tree) Empty() bool { return t.Root == None }

// Span returns the source range covered by node i.
func (t *Tree) Span(i int32) text.Span {
	n := t.Nodes[i]
	return text.Span{
		Start: t.Lexemes[n.First].Span.Start,
		End:   t.Lexemes[n.Last].Span.End,
	}
}

// Flatten returns the operands of the same-kind run rooted at i, in source
// order.
func (t *Tree) Flatten(i int32) []int32 {
	kind := t.Nodes[i].Kind
	var out []int32
	var walk func(j int32)
	walk = func(j int32) {
		n := t.Nodes[j]
		if n.Kind != kind {
			out = append(out, j)
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Nodes[i].Left)
	walk(t.Nodes[i].Right)
	return out
}

// String renders the tree as an indented outline.
func (t *Tree) String() string {
	if t.Empty() {
		return "(empty)\n"
	}
	var sb strings.Builder
	t.dump(&sb, t.Root, 0)
	return sb.String()
}

func (t *Tree) dump(sb *strings.Builder, i int32, depth int) {
	n := t.Nodes[i]
	sp := t.Span(i)
	indent := strings.Repeat("  ", depth)
	switch {
	case n.Kind == Member:
		fmt.Fprintf(sb, "%s#%d member %s [%d,%d)\n", indent, i, t.Lexemes[n.First].Text, sp.Start, sp.End)
		if n.Left != None {
			t.dump(sb, n.Left, depth+1)
		}
	case n.Kind.IsComparison():
		fmt.Fprintf(sb, "%s#%d %s %s [%d,%d)\n", indent, i, n.Kind, t.Lexemes[n.Last].Text, sp.Start, sp.End)
	default:
		fmt.Fprintf(sb, "%s#%d %s [%d,%d)\n", indent, i, n.Kind, sp.Start, sp.End)
		for _, c := range t.Flatten(i) {
			t.dump(sb, c, depth+1)
		}
	}
}
