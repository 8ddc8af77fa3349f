package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryPush(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("a")
	h.Push("")
	assert.Equal(t, []string{"a"}, h.Entries())

	h.Push("b")
	h.Push("c")
	assert.Equal(t, []string{"b", "c"}, h.Entries())
	assert.Equal(t, 2, h.Len())
}

func TestHistoryBrowse(t *testing.T) {
	h := NewHistory(10)
	_, ok := h.Prev()
	assert.False(t, ok)
	_, ok = h.Next()
	assert.False(t, ok)

	h.Push("one")
	h.Push("two")

	got, ok := h.Prev()
	assert.True(t, ok)
	assert.Equal(t, "two", got)
	got, _ = h.Prev()
	assert.Equal(t, "one", got)

	got, ok = h.Next()
	assert.True(t, ok)
	assert.Equal(t, "two", got)
	got, ok = h.Next()
	assert.True(t, ok)
	assert.Equal(t, "", got)
	_, ok = h.Next()
	assert.False(t, ok)

	// pushing resets the browse position
	h.Prev()
	h.Push("three")
	got, _ = h.Prev()
	assert.Equal(t, "three", got)
}
