// Package text holds the editable expression buffer: growable token cells, a
// single cursor offset and the per-character tokenizer state machine.
package text

import "unicode"

// Category is the lexical category of a token, derived from its first rune.
type Category uint8

const (
	Empty Category = iota
	Identifier
	Number
	String
	Operator
	Intrinsic
	Symbol
	Whitespace
	Unknown
)

var categoryNames = [...]string{
	Empty:      "empty",
	Identifier: "identifier",
	Number:     "number",
	String:     "string",
	Operator:   "operator",
	Intrinsic:  "intrinsic",
	Symbol:     "symbol",
	Whitespace: "whitespace",
	Unknown:    "unknown",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

type charClass uint8

const (
	classOther charClass = iota
	classLetter
	classDigit
	classMark
	classSpace
	classQuote
	classOperator
	classDot
	classSymbol
	classSign
)

func classOf(r rune) charClass {
	switch r {
	case '"', '\'':
		return classQuote
	case '<', '>', '=', '!', '~':
		return classOperator
	case '.':
		return classDot
	case ',', '|', '&', '(', ')':
		return classSymbol
	case '-', '+':
		return classSign
	case '_':
		return classLetter
	}
	switch {
	case unicode.IsLetter(r):
		return classLetter
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsMark(r):
		return classMark
	case unicode.IsSpace(r):
		return classSpace
	}
	return classOther
}

// CategoryOf returns the category of a token starting with r.
func CategoryOf(r rune) Category {
	switch classOf(r) {
	case classLetter:
		return Identifier
	case classDigit, classSign:
		return Number
	case classQuote:
		return String
	case classOperator:
		return Operator
	case classDot:
		return Intrinsic
	case classSymbol:
		return Symbol
	case classSpace:
		return Whitespace
	}
	return Unknown
}

// Token is a growable rune cell with a written-length counter.
type Token struct {
	cells []rune
	n     int
}

func newToken(s string) *Token {
	t := &Token{}
	for _, r := range s {
		t.insert(t.n, r)
	}
	return t
}

// Len returns the number of runes written to the token.
func (t *Token) Len() int { return t.n }

// Runes returns the written runes. The slice aliases the cell storage.
func (t *Token) Runes() []rune { return t.cells[:t.n] }

func (t *Token) String() string { return string(t.cells[:t.n]) }

// Category returns the lexical category of the token.
func (t *Token) Category() Category {
	if t.n == 0 {
		return Empty
	}
	return CategoryOf(t.cells[0])
}

func (t *Token) grow() {
	size := len(t.cells) * 2
	if size == 0 {
		size = 8
	}
	cells := make([]rune, size)
	copy(cells, t.cells[:t.n])
	t.cells = cells
}

func (t *Token) insert(at int, r rune) {
	if t.n == len(t.cells) {
		t.grow()
	}
	copy(t.cells[at+1:t.n+1], t.cells[at:t.n])
	t.cells[at] = r
	t.n++
}

func (t *Token) removeAt(at int) {
	copy(t.cells[at:t.n-1], t.cells[at+1:t.n])
	t.n--
}

// split truncates t at the given offset and returns the remainder as a new token.
func (t *Token) split(at int) *Token {
	right := &Token{}
	for _, r := range t.cells[at:t.n] {
		right.insert(right.n, r)
	}
	t.n = at
	return right
}

func (t *Token) appendToken(o *Token) {
	for _, r := range o.Runes() {
		t.insert(t.n, r)
	}
}

func (t *Token) set(s string) {
	t.n = 0
	for _, r := range s {
		t.insert(t.n, r)
	}
}
