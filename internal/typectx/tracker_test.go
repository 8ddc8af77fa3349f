package typectx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvfilter/internal/text"
	"github.com/oakwood-commons/kvfilter/pkg/typeinfo"
)

type item struct {
	X int
	Y string
}

type point struct {
	X     int
	Ratio float64
}

type root struct {
	A      int
	Item   item
	Points []point
	Maybe  *item
}

func track(expr string) ([]text.Lexeme, []Record, typeinfo.Descriptor) {
	d := typeinfo.Of[root]()
	lx := text.Tokenize(expr).Lexemes()
	return lx, Track(lx, d), d
}

func TestTrackLength(t *testing.T) {
	lx, recs, d := track("")
	assert.Len(t, lx, 1)
	require.Len(t, recs, 2)
	assert.Equal(t, d, recs[0].Nearest)
	assert.Equal(t, d, recs[0].Enclosing)
	assert.Equal(t, recs[0], recs[1])
}

func TestTrackScopes(t *testing.T) {
	lx, recs, d := track("Item (X=1, Y) ")
	texts := make([]string, len(lx))
	for i, l := range lx {
		texts[i] = l.Text
	}
	require.Equal(t, []string{"Item", "(", "X", "=", "1", ",", "Y", ")", ""}, texts)

	itemType := reflect.TypeFor[item]()

	// at Y the clause restarted from Item's scope
	atY := recs[6]
	assert.Equal(t, itemType, atY.Nearest.Type)
	assert.Equal(t, itemType, atY.Enclosing.Type)
	assert.Equal(t, 1, atY.Depth)

	// after ) the context before ( is restored
	assert.Equal(t, recs[1], recs[8])
	assert.Equal(t, itemType, recs[8].Nearest.Type)
	assert.Equal(t, d.Type, recs[8].Enclosing.Type)
	assert.Equal(t, 0, recs[8].Depth)

	// the literal after = is a value, not a member
	assert.True(t, recs[5].Value)
	assert.Equal(t, reflect.TypeFor[int](), recs[5].Nearest.Type)
}

func TestTrackConjunctionResetsToRoot(t *testing.T) {
	_, recs, d := track("Item X = 1 | A")
	assert.Equal(t, reflect.TypeFor[int](), recs[2].Nearest.Type)
	assert.Equal(t, d, recs[5].Nearest)
	assert.Equal(t, reflect.TypeFor[int](), recs[6].Nearest.Type)
	assert.False(t, recs[6].Frozen)
}

func TestTrackSequence(t *testing.T) {
	_, recs, _ := track("Points .any X")
	seq := reflect.TypeFor[[]point]()
	assert.Equal(t, seq, recs[1].Nearest.Type)
	assert.Equal(t, seq, recs[2].Nearest.Type, ".any keeps the sequence")
	assert.Equal(t, reflect.TypeFor[int](), recs[3].Nearest.Type)

	_, recs, _ = track("Points Ratio .round")
	assert.Equal(t, reflect.TypeFor[float64](), recs[2].Nearest.Type)
	assert.Equal(t, reflect.TypeFor[int64](), recs[3].Nearest.Type)

	_, recs, _ = track("Points .length")
	assert.Equal(t, reflect.TypeFor[int](), recs[2].Nearest.Type)
}

func TestTrackNullable(t *testing.T) {
	_, recs, _ := track("Maybe Y")
	assert.Equal(t, reflect.TypeFor[*item](), recs[1].Nearest.Type)
	assert.True(t, recs[1].Nearest.Nullable())
	assert.Equal(t, reflect.TypeFor[string](), recs[2].Nearest.Type)
}

func TestTrackFreezes(t *testing.T) {
	tests := []struct {
		name string
		expr string
		at   int
	}{
		{name: "unknown member", expr: "Item Nope X", at: 1},
		{name: "unknown intrinsic", expr: "Points .sum X", at: 1},
		{name: "number as member", expr: "5 A", at: 0},
		{name: "unbalanced close", expr: "A ) Item", at: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, recs, _ := track(tt.expr)
			frozen := recs[tt.at+1]
			assert.True(t, frozen.Frozen)
			assert.Equal(t, recs[tt.at].Nearest, frozen.Nearest)
			for _, r := range recs[tt.at+1:] {
				assert.Equal(t, frozen, r)
			}
		})
	}
}

func TestTrackIsDeterministic(t *testing.T) {
	d := typeinfo.Of[root]()
	lx := text.Tokenize("Item (X = 1 | Y ~ a), Points .all Ratio .ceil > 2").Lexemes()
	assert.Equal(t, Track(lx, d), Track(lx, d))
}

func TestLookupIntrinsic(t *testing.T) {
	for _, info := range Intrinsics {
		in, ok := LookupIntrinsic(info.Name)
		require.True(t, ok)
		assert.Equal(t, info.Intrinsic, in)
		assert.Equal(t, info.Name, in.String())
		assert.NotEmpty(t, in.Description())
	}
	_, ok := LookupIntrinsic(".nope")
	assert.False(t, ok)
	assert.True(t, Length.OnSequence())
	assert.True(t, Floor.Rounding())
}
