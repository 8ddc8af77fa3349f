package completion

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatOneLiner returns a single-line help string for the status bar.
func FormatOneLiner(c Completion) string {
	parts := []string{label(c)}
	if c.Detail != "" && c.Kind != CompletionPlaceholder {
		parts = append(parts, c.Detail)
	}
	if desc := strings.TrimSpace(c.Description); desc != "" {
		parts = append(parts, desc)
	}
	return strings.Join(parts, " - ")
}

// FormatLines returns one display line per completion, labels padded to a
// common width.
func FormatLines(cands []Completion) []string {
	width := 0
	for _, c := range cands {
		width = max(width, runewidth.StringWidth(label(c)))
	}
	lines := make([]string, 0, len(cands))
	for _, c := range cands {
		line := label(c)
		if extra := detailText(c); extra != "" {
			line += strings.Repeat(" ", width-runewidth.StringWidth(line)+2) + extra
		}
		lines = append(lines, line)
	}
	return lines
}

func label(c Completion) string {
	if c.Kind == CompletionPlaceholder {
		return "<" + c.Detail + ">"
	}
	return c.Text
}

func detailText(c Completion) string {
	switch {
	case c.Detail != "" && c.Description != "" && c.Kind != CompletionPlaceholder:
		return c.Detail + "  " + c.Description
	case c.Description != "":
		return c.Description
	}
	return c.Kind.String()
}
