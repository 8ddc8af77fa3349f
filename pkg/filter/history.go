package filter

import "slices"

// DefaultHistorySize bounds a History created with a non-positive size.
const DefaultHistorySize = 100

// History keeps the expressions compiled during a session, oldest first,
// and a browse position for recalling them. Consecutive duplicates are
// stored once. History is not persisted.
type History struct {
	entries []string
	pos     int
	size    int
}

// NewHistory returns a history holding at most size entries.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Push records expr and resets the browse position past the newest entry.
func (h *History) Push(expr string) {
	if expr != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != expr) {
		h.entries = append(h.entries, expr)
		if len(h.entries) > h.size {
			h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.size)
		}
	}
	h.pos = len(h.entries)
}

// Prev steps back one entry. It reports false at the oldest entry.
func (h *History) Prev() (string, bool) {
	if h.pos == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Next steps forward one entry. Stepping past the newest entry returns ""
// and true once, restoring an empty line; after that it reports false.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", true
	}
	return h.entries[h.pos], true
}

// Entries returns a copy of the stored expressions, oldest first.
func (h *History) Entries() []string { return slices.Clone(h.entries) }

// Len returns the number of stored expressions.
func (h *History) Len() int { return len(h.entries) }
