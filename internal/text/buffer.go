package text

import (
	"slices"
	"strings"
	"unicode"
)

// Direction selects the target of Move and Remove.
type Direction uint8

const (
	PrevChar Direction = iota
	NextChar
	StartOfToken
	EndOfToken
	StartOfText
	EndOfText
)

// Span is a half-open range of buffer offsets.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the width of the span.
func (s Span) Len() int { return s.End - s.Start }

// Lexeme is a read-only snapshot of one token.
type Lexeme struct {
	Text     string
	Category Category
	Span     Span
}

// Buffer is the editable expression text: an ordered list of tokens joined by
// exactly one virtual space, plus a cursor offset in that addressing. Only
// the last token may be empty, so offsets below the rendered length address
// Render() exactly.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	tokens []*Token
	cursor int
}

// NewBuffer returns an empty buffer holding a single empty token.
func NewBuffer() *Buffer {
	return &Buffer{tokens: []*Token{{}}}
}

// Tokenize returns a buffer holding s, typed character by character.
func Tokenize(s string) *Buffer {
	b := NewBuffer()
	b.Insert(s)
	return b
}

// Reset replaces the whole content with s and puts the cursor at the end.
func (b *Buffer) Reset(s string) {
	b.tokens = []*Token{{}}
	b.cursor = 0
	b.Insert(s)
}

// Len returns the total length: token lengths plus one per boundary.
func (b *Buffer) Len() int {
	n := len(b.tokens) - 1
	for _, t := range b.tokens {
		n += t.Len()
	}
	return n
}

// Cursor returns the cursor offset.
func (b *Buffer) Cursor() int { return b.cursor }

// SetCursor moves the cursor to offset, clamped to the buffer.
func (b *Buffer) SetCursor(offset int) {
	b.cursor = max(0, min(offset, b.Len()))
}

// Count returns the number of tokens.
func (b *Buffer) Count() int { return len(b.tokens) }

// Token returns the text of token i.
func (b *Buffer) Token(i int) string { return b.tokens[i].String() }

// PositionOf maps an offset to a token index and an offset inside that token.
// An offset on the boundary after a token maps to the end of that token.
func (b *Buffer) PositionOf(offset int) (int, int) {
	start := 0
	for i, t := range b.tokens {
		end := start + t.Len()
		if offset <= end || i == len(b.tokens)-1 {
			return i, max(0, min(offset-start, t.Len()))
		}
		start = end + 1
	}
	return 0, 0
}

// Start returns the offset of the first rune of token i.
func (b *Buffer) Start(i int) int {
	start := 0
	for _, t := range b.tokens[:i] {
		start += t.Len() + 1
	}
	return start
}

// CurrentToken returns the index of the token under the cursor and the part
// of it left of the cursor.
func (b *Buffer) CurrentToken() (int, string) {
	i, off := b.PositionOf(b.cursor)
	return i, string(b.tokens[i].Runes()[:off])
}

// Lexemes snapshots every token, empty ones included.
func (b *Buffer) Lexemes() []Lexeme {
	out := make([]Lexeme, len(b.tokens))
	start := 0
	for i, t := range b.tokens {
		out[i] = Lexeme{
			Text:     t.String(),
			Category: t.Category(),
			Span:     Span{Start: start, End: start + t.Len()},
		}
		start += t.Len() + 1
	}
	return out
}

// Render joins the non-empty tokens with exactly one space.
func (b *Buffer) Render() string {
	var sb strings.Builder
	for _, t := range b.tokens {
		if t.Len() == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (b *Buffer) String() string { return b.Render() }

// Insert types s at the cursor one rune at a time.
func (b *Buffer) Insert(s string) {
	for _, r := range s {
		b.insertRune(r)
	}
}

func (b *Buffer) insertRune(r rune) {
	ti, off := b.PositionOf(b.cursor)
	t := b.tokens[ti]
	prefix := t.Runes()[:off]

	switch {
	case off > 0 && extends(prefix, r):
		t.insert(off, r)
		b.cursor++
		if off+1 < t.Len() && closedString(t.Runes()[:off+1]) {
			b.insertToken(ti+1, t.split(off+1))
		}
	case unicode.IsSpace(r):
		switch {
		case off == 0:
			// no leading or doubled boundaries
		case off == t.Len():
			// only the last token may be empty; before any other token
			// the boundary already exists and the cursor steps over it
			if ti+1 == len(b.tokens) {
				b.insertToken(ti+1, &Token{})
			}
			b.cursor++
		default:
			b.insertToken(ti+1, t.split(off))
			b.cursor++
		}
	case t.Len() == 0:
		t.insert(0, r)
		b.cursor++
	case off == 0:
		if extends([]rune{r}, t.Runes()[0]) {
			t.insert(0, r)
		} else {
			b.insertToken(ti, newToken(string(r)))
		}
		b.cursor++
	case off == t.Len():
		b.insertToken(ti+1, newToken(string(r)))
		b.cursor += 2
	default:
		right := t.split(off)
		b.insertToken(ti+1, right)
		b.insertToken(ti+1, newToken(string(r)))
		b.cursor += 2
	}
}

func (b *Buffer) insertToken(at int, t *Token) {
	b.tokens = slices.Insert(b.tokens, at, t)
}

// Move relocates the cursor.
func (b *Buffer) Move(dir Direction) {
	b.cursor = b.target(dir)
}

// Remove deletes everything between the cursor and the target of dir.
func (b *Buffer) Remove(dir Direction) {
	target := b.target(dir)
	lo, hi := min(b.cursor, target), max(b.cursor, target)
	b.cursor = lo
	for n := hi - lo; n > 0 && lo < b.Len(); {
		removed := b.deleteAt(lo)
		if removed == 0 {
			break
		}
		n -= removed
	}
	b.cursor = min(b.cursor, b.Len())
}

// ReplaceCurrentToken swaps the token under the cursor for s and moves the
// cursor to its end. Replacing a token other than the last with "" removes
// it together with its boundary.
func (b *Buffer) ReplaceCurrentToken(s string) {
	ti, _ := b.PositionOf(b.cursor)
	start := b.Start(ti)
	if s == "" && ti < len(b.tokens)-1 {
		b.tokens = slices.Delete(b.tokens, ti, ti+1)
		b.cursor = start
		return
	}
	b.tokens[ti].set(s)
	b.cursor = start + b.tokens[ti].Len()
}

func (b *Buffer) target(dir Direction) int {
	switch dir {
	case PrevChar:
		return max(b.cursor-1, 0)
	case NextChar:
		return min(b.cursor+1, b.Len())
	case StartOfToken:
		if _, off := b.PositionOf(b.cursor); off > 0 {
			return b.cursor - off
		}
		return b.target(PrevChar)
	case EndOfToken:
		ti, off := b.PositionOf(b.cursor)
		if n := b.tokens[ti].Len(); off < n {
			return b.cursor + n - off
		}
		return b.target(NextChar)
	case StartOfText:
		return 0
	case EndOfText:
		return b.Len()
	}
	return b.cursor
}

// deleteAt removes the character at offset and returns how many offsets the
// buffer shrank by. Removing a boundary merges the two tokens around it.
func (b *Buffer) deleteAt(offset int) int {
	ti, off := b.PositionOf(offset)
	t := b.tokens[ti]
	if off < t.Len() {
		t.removeAt(off)
		if t.Len() == 0 && ti < len(b.tokens)-1 {
			b.tokens = slices.Delete(b.tokens, ti, ti+1)
			return 2
		}
		return 1
	}
	if ti == len(b.tokens)-1 {
		return 0
	}
	t.appendToken(b.tokens[ti+1])
	b.tokens = slices.Delete(b.tokens, ti+1, ti+2)
	return 1
}
