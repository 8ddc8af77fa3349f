package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/kvfilter/internal/completion"
	"github.com/oakwood-commons/kvfilter/pkg/filter"
)

const prompt = "filter> "

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	// Enable keyboard enhancements for proper modifier key detection (e.g., Shift+Tab)
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

func (m *Model) render() string {
	var b strings.Builder
	b.WriteString(m.styles.prompt.Render(prompt) + m.inputLine() + "\n")
	b.WriteString(m.caretLine() + "\n")
	b.WriteString(m.candidateLines())
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.results.View() + "\n")
	b.WriteString(m.styles.help.Render(helpLine))
	return b.String()
}

// inputLine renders the expression with the cursor cell highlighted. The
// cursor may sit one past the rendered text after a trailing space.
func (m *Model) inputLine() string {
	text := []rune(m.editor.Text())
	cur := m.editor.Cursor()
	for len(text) <= cur {
		text = append(text, ' ')
	}
	return m.styles.input.Render(string(text[:cur])) +
		m.styles.cursor.Render(string(text[cur])) +
		m.styles.input.Render(string(text[cur+1:]))
}

// caretLine underlines the token a compile error points at.
func (m *Model) caretLine() string {
	ferr, ok := filterError(m.err)
	if !ok {
		return ""
	}
	return Caret(m.editor.Text(), ferr.Span, runewidth.StringWidth(prompt), m.styles.errorText.Render)
}

// Caret returns a line of ^ under span of text, shifted right by indent
// cells.
func Caret(text string, span filter.Span, indent int, style func(...string) string) string {
	runes := []rune(text)
	start := min(span.Start, len(runes))
	end := min(max(span.End, start+1), max(len(runes), start+1))
	pad := indent + runewidth.StringWidth(string(runes[:start]))
	width := max(runewidth.StringWidth(string(runes[start:min(end, len(runes))])), 1)
	return strings.Repeat(" ", pad) + style(strings.Repeat("^", width))
}

// candidateLines lists a window of candidates around the selection.
func (m *Model) candidateLines() string {
	cands := m.editor.Candidates()
	if len(cands) == 0 {
		return ""
	}
	first := 0
	if m.selected >= maxCandidates {
		first = m.selected - maxCandidates + 1
	}
	last := min(first+maxCandidates, len(cands))

	var b strings.Builder
	for i, line := range completion.FormatLines(cands[first:last]) {
		line = "  " + line
		if first+i == m.selected {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if more := len(cands) - last; more > 0 {
		b.WriteString(m.styles.detail.Render(fmt.Sprintf("  … %d more", more)) + "\n")
	}
	return b.String()
}

func (m *Model) statusLine() string {
	counts := fmt.Sprintf("%d of %d match", len(m.matched), m.ds.Len())
	if m.err == nil {
		if cands := m.editor.Candidates(); m.selected >= 0 && m.selected < len(cands) {
			return m.styles.status.Render(counts+" · ") + m.styles.detail.Render(completion.FormatOneLiner(cands[m.selected]))
		}
		return m.styles.status.Render(counts)
	}
	return m.styles.status.Render(counts+" · ") + m.styles.errorText.Render(m.err.Error())
}
