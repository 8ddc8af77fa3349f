package text

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokensOf(b *Buffer) []string {
	out := make([]string, b.Count())
	for i := range out {
		out[i] = b.Token(i)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		tokens []string
		render string
	}{
		{
			name:   "empty",
			input:  "",
			tokens: []string{""},
			render: "",
		},
		{
			name:   "comparison",
			input:  `Age > 30, Name ~ "^A"`,
			tokens: []string{"Age", ">", "30", ",", "Name", "~", `"^A"`},
			render: `Age > 30 , Name ~ "^A"`,
		},
		{
			name:   "no spaces",
			input:  "Age>=30&Active",
			tokens: []string{"Age", ">=", "30", "&", "Active"},
			render: "Age >= 30 & Active",
		},
		{
			name:   "trailing space leaves empty token",
			input:  "Age ",
			tokens: []string{"Age", ""},
			render: "Age",
		},
		{
			name:   "collapses repeated whitespace",
			input:  "  Age   =\t1  ",
			tokens: []string{"Age", "=", "1", ""},
			render: "Age = 1",
		},
		{
			name:   "string absorbs spaces and operators",
			input:  `Name = 'a, b > c'`,
			tokens: []string{"Name", "=", "'a, b > c'"},
			render: "Name = 'a, b > c'",
		},
		{
			name:   "mixed quotes do not close",
			input:  `"it's"x`,
			tokens: []string{`"it's"`, "x"},
			render: `"it's" x`,
		},
		{
			name:   "operators",
			input:  "a<=1|b!=2|c<3|d~x",
			tokens: []string{"a", "<=", "1", "|", "b", "!=", "2", "|", "c", "<", "3", "|", "d", "~", "x"},
			render: "a <= 1 | b != 2 | c < 3 | d ~ x",
		},
		{
			name:   "equals does not chain",
			input:  "a==1",
			tokens: []string{"a", "=", "=", "1"},
			render: "a = = 1",
		},
		{
			name:   "number with single decimal point",
			input:  "1.5.2",
			tokens: []string{"1.5", ".", "2"},
			render: "1.5 . 2",
		},
		{
			name:   "signed number",
			input:  "X>-12",
			tokens: []string{"X", ">", "-12"},
			render: "X > -12",
		},
		{
			name:   "intrinsics take ascii letters",
			input:  "Points.length>2",
			tokens: []string{"Points", ".length", ">", "2"},
			render: "Points .length > 2",
		},
		{
			name:   "symbols never extend",
			input:  "((a))",
			tokens: []string{"(", "(", "a", ")", ")"},
			render: "( ( a ) )",
		},
		{
			name:   "identifier with digits and underscore",
			input:  "field_2x",
			tokens: []string{"field_2x"},
			render: "field_2x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Tokenize(tt.input)
			assert.Equal(t, tt.tokens, tokensOf(b))
			assert.Equal(t, tt.render, b.Render())
			assert.Equal(t, b.Len(), b.Cursor())
		})
	}
}

func TestLexemes(t *testing.T) {
	b := Tokenize("Age > 30 ")
	lx := b.Lexemes()
	require.Len(t, lx, 4)

	assert.Equal(t, Lexeme{Text: "Age", Category: Identifier, Span: Span{0, 3}}, lx[0])
	assert.Equal(t, Lexeme{Text: ">", Category: Operator, Span: Span{4, 5}}, lx[1])
	assert.Equal(t, Lexeme{Text: "30", Category: Number, Span: Span{6, 8}}, lx[2])
	assert.Equal(t, Lexeme{Text: "", Category: Empty, Span: Span{9, 9}}, lx[3])
}

func TestInsertMidToken(t *testing.T) {
	t.Run("incompatible rune splits", func(t *testing.T) {
		b := Tokenize("AgeName")
		b.SetCursor(3)
		b.Insert(">")
		assert.Equal(t, []string{"Age", ">", "Name"}, tokensOf(b))
		assert.Equal(t, 5, b.Cursor())
	})

	t.Run("whitespace splits", func(t *testing.T) {
		b := Tokenize("AgeName")
		b.SetCursor(3)
		b.Insert(" ")
		assert.Equal(t, []string{"Age", "Name"}, tokensOf(b))
		idx, off := b.PositionOf(b.Cursor())
		assert.Equal(t, 1, idx)
		assert.Equal(t, 0, off)
	})

	t.Run("compatible rune at token start joins", func(t *testing.T) {
		b := Tokenize("Age Name")
		b.SetCursor(4)
		b.Insert("x")
		assert.Equal(t, []string{"Age", "xName"}, tokensOf(b))
		assert.Equal(t, 5, b.Cursor())
	})

	t.Run("incompatible rune at token start goes before", func(t *testing.T) {
		b := Tokenize("Age Name")
		b.SetCursor(4)
		b.Insert(">")
		assert.Equal(t, []string{"Age", ">", "Name"}, tokensOf(b))
		assert.Equal(t, 5, b.Cursor())
	})

	t.Run("closing quote splits remainder", func(t *testing.T) {
		b := Tokenize(`"ab`)
		b.SetCursor(2)
		b.Insert(`"`)
		assert.Equal(t, []string{`"a"`, "b"}, tokensOf(b))
		assert.Equal(t, 3, b.Cursor())
	})

	t.Run("space at token start is dropped", func(t *testing.T) {
		b := Tokenize("Age")
		b.SetCursor(0)
		b.Insert("   ")
		assert.Equal(t, []string{"Age"}, tokensOf(b))
		assert.Equal(t, 0, b.Cursor())
	})

	t.Run("space at token end before another token steps over the boundary", func(t *testing.T) {
		b := Tokenize("Age > abc")
		b.SetCursor(3)
		b.Insert(" ")
		assert.Equal(t, []string{"Age", ">", "abc"}, tokensOf(b))
		assert.Equal(t, 4, b.Cursor())
		assert.Equal(t, len(b.Render()), b.Len())
		lx := b.Lexemes()
		assert.Equal(t, "abc", b.Render()[lx[2].Span.Start:lx[2].Span.End])
	})

	t.Run("space before an empty token moves over it", func(t *testing.T) {
		b := Tokenize("Age ")
		b.SetCursor(3)
		b.Insert(" ")
		assert.Equal(t, []string{"Age", ""}, tokensOf(b))
		assert.Equal(t, 4, b.Cursor())
	})
}

func TestPositionOf(t *testing.T) {
	b := Tokenize("Age > 30")
	tests := []struct {
		offset int
		token  int
		in     int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{3, 0, 3},
		{4, 1, 0},
		{5, 1, 1},
		{6, 2, 0},
		{8, 2, 2},
		{42, 2, 2},
	}
	for _, tt := range tests {
		idx, off := b.PositionOf(tt.offset)
		assert.Equal(t, tt.token, idx, "offset %d", tt.offset)
		assert.Equal(t, tt.in, off, "offset %d", tt.offset)
	}
}

func TestMove(t *testing.T) {
	b := Tokenize("Age > 30")

	b.Move(StartOfToken)
	assert.Equal(t, 6, b.Cursor())
	b.Move(StartOfToken)
	assert.Equal(t, 5, b.Cursor(), "collapses to previous char at a boundary")
	b.Move(StartOfToken)
	assert.Equal(t, 4, b.Cursor())

	b.Move(StartOfText)
	assert.Equal(t, 0, b.Cursor())
	b.Move(PrevChar)
	assert.Equal(t, 0, b.Cursor())

	b.Move(EndOfToken)
	assert.Equal(t, 3, b.Cursor())
	b.Move(EndOfToken)
	assert.Equal(t, 4, b.Cursor(), "collapses to next char at a boundary")
	b.Move(EndOfToken)
	assert.Equal(t, 5, b.Cursor())

	b.Move(EndOfText)
	assert.Equal(t, 8, b.Cursor())
	b.Move(NextChar)
	assert.Equal(t, 8, b.Cursor())
}

func TestRemove(t *testing.T) {
	t.Run("previous char", func(t *testing.T) {
		b := Tokenize("Age > 30")
		b.Remove(PrevChar)
		assert.Equal(t, "Age > 3", b.Render())
		assert.Equal(t, 7, b.Cursor())
	})

	t.Run("boundary merges tokens", func(t *testing.T) {
		b := Tokenize("Age >")
		b.Move(PrevChar)
		b.Remove(PrevChar)
		assert.Equal(t, []string{"Age>"}, tokensOf(b))
		assert.Equal(t, 3, b.Cursor())
	})

	t.Run("trailing boundary", func(t *testing.T) {
		b := Tokenize("Age ")
		b.Remove(PrevChar)
		assert.Equal(t, []string{"Age"}, tokensOf(b))
		assert.Equal(t, 3, b.Cursor())
	})

	t.Run("emptied token is dropped", func(t *testing.T) {
		b := Tokenize("a b c")
		b.SetCursor(3)
		b.Remove(PrevChar)
		assert.Equal(t, []string{"a", "c"}, tokensOf(b))
		assert.Equal(t, 2, b.Cursor())
	})

	t.Run("start of token keeps trailing empty token", func(t *testing.T) {
		b := Tokenize("Age > 30")
		b.Remove(StartOfToken)
		assert.Equal(t, []string{"Age", ">", ""}, tokensOf(b))
		assert.Equal(t, "Age >", b.Render())
		assert.Equal(t, 6, b.Cursor())
	})

	t.Run("whole text", func(t *testing.T) {
		b := Tokenize("a b")
		b.Move(StartOfText)
		b.Remove(EndOfText)
		assert.Equal(t, []string{""}, tokensOf(b))
		assert.Equal(t, 0, b.Len())
	})

	t.Run("next char at end is a no-op", func(t *testing.T) {
		b := Tokenize("abc")
		b.Remove(NextChar)
		assert.Equal(t, "abc", b.Render())
	})
}

func TestReplaceCurrentToken(t *testing.T) {
	b := Tokenize("Age > 30, Na")
	b.ReplaceCurrentToken("Name")
	assert.Equal(t, "Age > 30 , Name", b.Render())
	assert.Equal(t, b.Len(), b.Cursor())

	b.SetCursor(1)
	b.ReplaceCurrentToken("Height")
	assert.Equal(t, "Height > 30 , Name", b.Render())
	assert.Equal(t, 6, b.Cursor())

	b.SetCursor(7)
	b.ReplaceCurrentToken("")
	assert.Equal(t, []string{"Height", "30", ",", "Name"}, tokensOf(b))
	assert.Equal(t, 7, b.Cursor())
	assert.Equal(t, len(b.Render()), b.Len())
}

func TestCurrentToken(t *testing.T) {
	idx, q := Tokenize("Age > 3").CurrentToken()
	assert.Equal(t, 2, idx)
	assert.Equal(t, "3", q)

	idx, q = Tokenize("Age ").CurrentToken()
	assert.Equal(t, 1, idx)
	assert.Empty(t, q)

	b := Tokenize("Name")
	b.SetCursor(2)
	_, q = b.CurrentToken()
	assert.Equal(t, "Na", q)
}

func TestReset(t *testing.T) {
	b := Tokenize("Age > 30")
	b.Reset("Name ~ x")
	assert.Equal(t, "Name ~ x", b.Render())
	assert.Equal(t, 8, b.Cursor())
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", Unquote(`"abc"`))
	assert.Equal(t, "abc", Unquote(`'abc'`))
	assert.Equal(t, `"abc'`, Unquote(`"abc'`))
	assert.Equal(t, `"abc"`, Unquote(`""abc""`))
	assert.Equal(t, `a\"b`, Unquote(`"a\"b"`))
	assert.Equal(t, `"`, Unquote(`"`))
	assert.Equal(t, "", Unquote(`''`))
}

// Random edits must keep the buffer well formed.
// requireAddressable checks that buffer offsets address the rendered text:
// only the last token may be empty and every span slices its own text.
func requireAddressable(t *testing.T, b *Buffer, step int) {
	t.Helper()
	rendered := []rune(b.Render())
	lx := b.Lexemes()
	var nonEmpty []string
	for i, l := range lx {
		if l.Text == "" {
			require.Equal(t, len(lx)-1, i, "step %d: empty token %d of %d", step, i, len(lx))
			continue
		}
		nonEmpty = append(nonEmpty, l.Text)
		require.LessOrEqual(t, l.Span.End, len(rendered), "step %d: %q", step, string(rendered))
		require.Equal(t, l.Text, string(rendered[l.Span.Start:l.Span.End]), "step %d: token %d", step, i)
	}
	require.Equal(t, strings.Join(nonEmpty, " "), string(rendered), "step %d", step)

	want := len(rendered)
	if len(lx) > 1 && lx[len(lx)-1].Text == "" {
		want++
	}
	require.Equal(t, want, b.Len(), "step %d: %q", step, string(rendered))
}

func TestRandomEditsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abAB_19.<>=!~,|&() -\t\"'")
	dirs := []Direction{PrevChar, NextChar, StartOfToken, EndOfToken, StartOfText, EndOfText}

	b := NewBuffer()
	for step := 0; step < 5000; step++ {
		switch rng.Intn(5) {
		case 0, 1:
			b.Insert(string(alphabet[rng.Intn(len(alphabet))]))
		case 2:
			b.Remove(dirs[rng.Intn(len(dirs))])
		case 3:
			b.Move(dirs[rng.Intn(len(dirs))])
		case 4:
			b.SetCursor(rng.Intn(b.Len() + 1))
		}

		require.GreaterOrEqual(t, b.Count(), 1)
		sum := 0
		for _, tok := range tokensOf(b) {
			sum += len([]rune(tok))
			// whitespace only ever enters a token through a quoted string
			if !strings.ContainsAny(tok, "\"'") {
				require.NotContains(t, tok, " ", "step %d", step)
				require.NotContains(t, tok, "\t", "step %d", step)
			}
		}
		require.Equal(t, sum+b.Count()-1, b.Len(), "step %d", step)
		require.GreaterOrEqual(t, b.Cursor(), 0)
		require.LessOrEqual(t, b.Cursor(), b.Len())
		requireAddressable(t, b, step)
	}
}
