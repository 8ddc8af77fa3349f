package syntax

import (
	"errors"

	"github.com/oakwood-commons/kvfilter/internal/text"
)

type parser struct {
	lexemes []text.Lexeme
	order   []int32 // indices of non-empty lexemes
	pos     int
	nodes   []Node
}

// Parse builds the tree for lexemes. Empty lexemes are skipped; an expression
// without tokens yields a tree whose Root is None.
func Parse(lexemes []text.Lexeme) (*Tree, *Error) {
	p := &parser{lexemes: lexemes}
	for i, lx := range lexemes {
		if lx.Category != text.Empty {
			p.order = append(p.order, int32(i))
		}
	}
	tree := &Tree{Root: None, Lexemes: lexemes}
	if len(p.order) == 0 {
		return tree, nil
	}
	root, err := p.comma()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.fail(p.peek(), errors.New("unexpected token"))
	}
	tree.Nodes = p.nodes
	tree.Root = root
	return tree, nil
}

func (p *parser) done() bool { return p.pos >= len(p.order) }

// peek returns the lexeme index at the read position, or None at the end.
func (p *parser) peek() int32 {
	if p.done() {
		return None
	}
	return p.order[p.pos]
}

func (p *parser) symbol(s string) bool {
	i := p.peek()
	return i != None && p.lexemes[i].Category == text.Symbol && p.lexemes[i].Text == s
}

func (p *parser) fail(at int32, cause error) *Error {
	if at == None {
		at = p.order[len(p.order)-1]
	}
	return NewError(UnknownFragment, p.lexemes[at], cause)
}

func (p *parser) add(n Node) int32 {
	p.nodes = append(p.nodes, n)
	return int32(len(p.nodes) - 1)
}

func (p *parser) binary(kind Kind, sym string, operand, self func() (int32, *Error)) (int32, *Error) {
	left, err := operand()
	if err != nil {
		return None, err
	}
	if !p.symbol(sym) {
		return left, nil
	}
	p.pos++
	right, err := self()
	if err != nil {
		return None, err
	}
	return p.add(Node{
		First: p.nodes[left].First,
		Last:  p.nodes[right].Last,
		Kind:  kind,
		Left:  left,
		Right: right,
	}), nil
}

func (p *parser) comma() (int32, *Error) { return p.binary(Comma, ",", p.or, p.comma) }
func (p *parser) or() (int32, *Error)    { return p.binary(Or, "|", p.and, p.or) }
func (p *parser) and() (int32, *Error)   { return p.binary(And, "&", p.primary, p.and) }

func (p *parser) primary() (int32, *Error) {
	if p.symbol("(") {
		open := p.peek()
		p.pos++
		inner, err := p.comma()
		if err != nil {
			return None, err
		}
		if !p.symbol(")") {
			if p.done() {
				return None, p.fail(open, errors.New("unclosed parenthesis"))
			}
			return None, p.fail(p.peek(), errors.New("expected )"))
		}
		p.pos++
		return inner, nil
	}
	return p.term()
}

// startsTerm reports whether the token at the read position can open a
// nested condition.
func (p *parser) startsTerm() bool {
	i := p.peek()
	if i == None {
		return false
	}
	lx := p.lexemes[i]
	if lx.Category != text.Symbol {
		return true
	}
	return lx.Text == "("
}

func (p *parser) term() (int32, *Error) {
	at := p.peek()
	if at == None {
		return None, p.fail(None, errors.New("expected a condition"))
	}
	lx := p.lexemes[at]
	switch lx.Category {
	case text.Operator:
		kind, ok := OperatorKind(lx.Text)
		if !ok {
			return None, p.fail(at, errors.New("unknown operator"))
		}
		p.pos++
		val := p.peek()
		if val == None {
			return None, p.fail(at, errors.New("missing value"))
		}
		switch p.lexemes[val].Category {
		case text.Symbol, text.Operator, text.Intrinsic:
			return None, p.fail(val, errors.New("expected a value"))
		}
		p.pos++
		return p.add(Node{First: at, Last: val, Kind: kind, Left: None, Right: None}), nil
	case text.Identifier, text.Intrinsic:
		p.pos++
		node := Node{First: at, Last: at, Kind: Member, Left: None, Right: None}
		if p.startsTerm() {
			child, err := p.primary()
			if err != nil {
				return None, err
			}
			node.Left = child
			node.Last = p.nodes[child].Last
		}
		return p.add(node), nil
	}
	return None, p.fail(at, errors.New("expected a member or operator"))
}
