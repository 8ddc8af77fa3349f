package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/internal/typectx"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

type access uint8

func (access) EnumMembers() []typeinfo.EnumMember {
	return []typeinfo.EnumMember{{Name: "A", Value: 1}, {Name: "B", Value: 2}, {Name: "C", Value: 4}}
}

func (access) Flags() bool { return true }

type mode uint8

func (mode) EnumMembers() []typeinfo.EnumMember {
	return []typeinfo.EnumMember{
		{Name: "A", Value: 1}, {Name: "B", Value: 2}, {Name: "C", Value: 4}, {Name: "All", Value: 7},
	}
}

func (mode) Flags() bool { return true }

type color int

func (color) EnumMembers() []typeinfo.EnumMember {
	return []typeinfo.EnumMember{{Name: "Red", Value: 0, Description: "warm"}, {Name: "Blue", Value: 1}}
}

type point struct {
	X int `desc:"horizontal position"`
}

type sample struct {
	Name   string `desc:"display name"`
	Age    int
	Active bool
	Score  float64
	Nick   *string
	Tags   []string
	Points []point
	Access access
	Mode   mode
	Color  color
}

var root = typeinfo.Of[sample]()

func texts(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

func member(t *testing.T, name string) typeinfo.Descriptor {
	t.Helper()
	m, ok := root.Lookup(name)
	require.True(t, ok, name)
	return root.With(m.Type)
}

func lexeme(s string) *text.Lexeme {
	lx := text.Tokenize(s).Lexemes()[0]
	return &lx
}

func TestCandidatesAtStart(t *testing.T) {
	g := NewGenerator()
	got := g.Candidates(nil, typectx.Record{Nearest: root, Enclosing: root})
	assert.Equal(t, []string{
		"Name", "Age", "Active", "Score", "Nick", "Tags", "Points", "Access", "Mode", "Color", "(",
	}, texts(got))
	assert.Equal(t, CompletionMember, got[0].Kind)
	assert.Equal(t, "string", got[0].Detail)
	assert.Equal(t, "display name", got[0].Description)
	assert.Equal(t, CompletionGroup, got[len(got)-1].Kind)
}

func TestCandidatesAfterMember(t *testing.T) {
	g := NewGenerator()
	tests := []struct {
		member string
		want   []string
	}{
		{"Name", []string{"=", "!=", "<", "<=", ">", ">=", "~", "("}},
		{"Age", []string{"=", "!=", "<", "<=", ">", ">=", "("}},
		{"Active", []string{"=", "!=", "("}},
		{"Score", []string{"=", "!=", "<", "<=", ">", ">=", ".ceil", ".floor", ".round", "("}},
		{"Nick", []string{"=", "!=", "<", "<=", ">", ">=", "~", "("}},
		{"Tags", []string{"=", "!=", "<", "<=", ">", ">=", "~", ".any", ".all", ".length", "("}},
		{"Points", []string{"X", ".any", ".all", ".length", "("}},
		{"Access", []string{"=", "!=", "<", "<=", ">", ">=", "~", "("}},
		{"Color", []string{"=", "!=", "<", "<=", ">", ">=", "("}},
	}
	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			d := member(t, tt.member)
			got := g.Candidates(lexeme(tt.member), typectx.Record{Nearest: d, Enclosing: root})
			assert.Equal(t, tt.want, texts(got))
		})
	}
}

func TestCandidatesNullableObject(t *testing.T) {
	type holder struct {
		P *point
	}
	d := typeinfo.Of[holder]()
	m, _ := d.Lookup("P")
	got := NewGenerator().Candidates(lexeme("P"), typectx.Record{Nearest: d.With(m.Type), Enclosing: d})
	assert.Equal(t, []string{"X", "=", "!=", "("}, texts(got))
}

func TestCandidatesAfterOperator(t *testing.T) {
	g := NewGenerator()
	op := lexeme("=")

	t.Run("flags composites", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Access"), Enclosing: root})
		assert.Equal(t, []string{"A", "B", "C", `"A,B"`, `"A,C"`, `"B,C"`, `"A,B,C"`}, texts(got))
		for _, c := range got {
			assert.Equal(t, CompletionLiteral, c.Kind)
		}
	})

	t.Run("named combinations are skipped", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Mode"), Enclosing: root})
		assert.Equal(t, []string{"A", "B", "C", "All", `"A,B"`, `"A,C"`, `"B,C"`}, texts(got))
	})

	t.Run("composite cap", func(t *testing.T) {
		capped := &Generator{MaxComposites: 2}
		got := capped.Candidates(op, typectx.Record{Nearest: member(t, "Access"), Enclosing: root})
		assert.Equal(t, []string{"A", "B", "C", `"A,B"`, `"A,C"`}, texts(got))
	})

	t.Run("plain enum", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Color"), Enclosing: root})
		assert.Equal(t, []string{"Red", "Blue"}, texts(got))
		assert.Equal(t, "warm", got[0].Description)
	})

	t.Run("bool", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Active"), Enclosing: root})
		assert.Equal(t, []string{"true", "false"}, texts(got))
	})

	t.Run("nullable", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Nick"), Enclosing: root})
		require.Len(t, got, 2)
		assert.Equal(t, "null", got[0].Text)
		assert.Equal(t, CompletionPlaceholder, got[1].Kind)
		assert.False(t, got[1].Insertable())
	})

	t.Run("free input", func(t *testing.T) {
		got := g.Candidates(op, typectx.Record{Nearest: member(t, "Age"), Enclosing: root})
		require.Len(t, got, 1)
		assert.Equal(t, CompletionPlaceholder, got[0].Kind)
		assert.Equal(t, "int", got[0].Detail)
	})
}

func TestCandidatesAfterSymbols(t *testing.T) {
	g := NewGenerator()
	item := member(t, "Points")

	got := g.Candidates(lexeme(")"), typectx.Record{Nearest: item, Enclosing: root})
	assert.Equal(t, []string{",", "|", "&"}, texts(got))

	// , | & and ( offer the enclosing scope, not the last member
	for _, sym := range []string{",", "|", "&", "("} {
		got = g.Candidates(lexeme(sym), typectx.Record{Nearest: member(t, "Age"), Enclosing: item})
		assert.Equal(t, []string{"X", ".any", ".all", ".length", "("}, texts(got), sym)
	}
}

func TestCandidatesAfterValues(t *testing.T) {
	g := NewGenerator()
	rec := typectx.Record{Nearest: member(t, "Age"), Enclosing: root, Value: true}
	for _, v := range []string{"30", `"x"`, "Red"} {
		got := g.Candidates(lexeme(v), rec)
		assert.Equal(t, []string{",", "|", "&"}, texts(got), v)
	}
}

func TestCandidatesAfterIntrinsic(t *testing.T) {
	g := NewGenerator()
	pts := member(t, "Points")

	got := g.Candidates(lexeme(".any"), typectx.Record{Nearest: pts, Enclosing: root})
	assert.Equal(t, []string{"X", "("}, texts(got))

	length := typectx.Length.Result(pts)
	got = g.Candidates(lexeme(".length"), typectx.Record{Nearest: length, Enclosing: root})
	assert.Equal(t, []string{"=", "!=", "<", "<=", ">", ">=", "("}, texts(got))
}

func TestCandidatesInvalidRecord(t *testing.T) {
	assert.Empty(t, NewGenerator().Candidates(nil, typectx.Record{}))
}

func TestFilterCamelInitials(t *testing.T) {
	cands := []Completion{{Text: "AbcDefGhi"}, {Text: "Xyz"}}
	assert.Equal(t, []string{"AbcDefGhi"}, texts(Filter(cands, "adg")))
}

func TestFilterPhaseOrder(t *testing.T) {
	cands := []Completion{{Text: "Rename"}, {Text: "name"}, {Text: "Name"}, {Text: "NameFull"}, {Text: "aNAME"}, {Text: "Age"}}
	assert.Equal(t, []string{"Name", "NameFull", "name", "Rename", "aNAME"}, texts(Filter(cands, "Name")))
}

func TestFilterDescriptionFallback(t *testing.T) {
	cands := []Completion{
		{Text: "X", Description: "horizontal position"},
		{Text: "Y", Description: "vertical position"},
	}
	assert.Equal(t, []string{"X"}, texts(Filter(cands, "horiz")))

	// descriptions are ignored once any text matches
	assert.Equal(t, []string{"X"}, texts(Filter(cands, "X")))
}

func TestFilterKeepsPlaceholders(t *testing.T) {
	cands := []Completion{{Text: "null", Kind: CompletionLiteral}, {Kind: CompletionPlaceholder, Detail: "string"}}
	got := Filter(cands, `"abc`)
	require.Len(t, got, 1)
	assert.Equal(t, CompletionPlaceholder, got[0].Kind)

	assert.Equal(t, cands, Filter(cands, ""))
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"AbcDefGhi":  "ADG",
		"item2Count": "i2C",
		"HTTPServer": "HTTPS",
		".length":    ".l",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Initials(in), in)
	}
}

func TestEngine(t *testing.T) {
	engine := NewEngine(NewGenerator(), WithMaxResults(3))
	got := engine.GetCompletions("", nil, typectx.Record{Nearest: root, Enclosing: root})
	assert.Equal(t, []string{"Name", "Age", "Active"}, texts(got))

	got = engine.GetCompletions("sc", nil, typectx.Record{Nearest: root, Enclosing: root})
	assert.Equal(t, []string{"Score"}, texts(got))

	unlimited := NewEngine(NewGenerator())
	got = unlimited.GetCompletions("A", nil, typectx.Record{Nearest: root, Enclosing: root})
	assert.Equal(t, []string{"Age", "Active", "Access", "Name", "Tags"}, texts(got))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Name - string - display name", FormatOneLiner(Completion{Text: "Name", Detail: "string", Description: "display name"}))
	assert.Equal(t, "<int> - int value", FormatOneLiner(Completion{Kind: CompletionPlaceholder, Detail: "int", Description: "int value"}))

	lines := FormatLines([]Completion{
		{Text: "Age", Kind: CompletionMember, Detail: "int"},
		{Text: ",", Kind: CompletionConjunction, Description: "and"},
	})
	assert.Equal(t, []string{"Age  member", ",    and"}, lines)
	assert.Equal(t, "placeholder", CompletionPlaceholder.String())
}
