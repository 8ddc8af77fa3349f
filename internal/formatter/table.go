package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	sepWidth    = 2
	minColWidth = 4
)

// Columns returns the keys of the object items in order of first
// appearance. Non-object items contribute a single "(value)" column.
func Columns(items []any) []string {
	var cols []string
	seen := map[string]bool{}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			add(valueColumn)
			continue
		}
		for _, k := range sortedKeys(m) {
			add(k)
		}
	}
	return cols
}

const valueColumn = "(value)"

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cell(item any, col string) string {
	if m, ok := item.(map[string]any); ok {
		return Stringify(m[col])
	}
	if col == valueColumn {
		return Stringify(item)
	}
	return ""
}

// RenderTable renders items as a columnar table with a "#" row number
// column. Columns wider than the available width are shrunk, widest first.
func RenderTable(items []any, columns []string, noColor bool, maxWidth int) string {
	if len(columns) == 0 {
		columns = Columns(items)
	}
	if len(columns) == 0 {
		return ""
	}
	rows := make([][]string, len(items))
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for r, it := range items {
		rows[r] = make([]string, len(columns))
		for i, c := range columns {
			rows[r][i] = cell(it, c)
			widths[i] = max(widths[i], runewidth.StringWidth(rows[r][i]))
		}
	}
	numWidth := max(len(fmt.Sprint(len(items))), 1)
	fit(widths, maxWidth-numWidth-sepWidth*len(columns))

	sep := strings.Repeat(" ", sepWidth)
	style := func(s string, render func(...string) string) string {
		if noColor {
			return s
		}
		return render(s)
	}

	var b strings.Builder
	header := []string{padRight("#", numWidth)}
	for i, c := range columns {
		header = append(header, padRight(strings.ToUpper(c), widths[i]))
	}
	headerLine := strings.Join(header, sep)
	if noColor {
		headerLine = strings.TrimRight(headerLine, " ")
	}
	b.WriteString(style(headerLine, headerStyle.Render) + "\n")
	total := numWidth
	for _, w := range widths {
		total += sepWidth + w
	}
	b.WriteString(style(strings.Repeat("─", total), separatorStyle.Render) + "\n")
	for r, row := range rows {
		line := []string{style(padRight(fmt.Sprint(r+1), numWidth), keyStyle.Render)}
		for i, v := range row {
			line = append(line, style(padRight(v, widths[i]), valueStyle.Render))
		}
		b.WriteString(strings.TrimRight(strings.Join(line, sep), " ") + "\n")
	}
	return b.String()
}

// fit shrinks the widest columns until the total fits budget or every
// column is at minColWidth.
func fit(widths []int, budget int) {
	if budget <= 0 {
		return
	}
	for {
		total, widest := 0, 0
		for i, w := range widths {
			total += w
			if w > widths[widest] {
				widest = i
			}
		}
		if total <= budget || widths[widest] <= minColWidth {
			return
		}
		widths[widest]--
	}
}

// RenderRows renders precomputed [key, value] pairs as a two-column table.
func RenderRows(rows [][]string, noColor bool, maxWidth int) string {
	keyWidth, valWidth := len("KEY"), len("VALUE")
	for _, row := range rows {
		if len(row) > 0 {
			keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
		}
		if len(row) > 1 {
			valWidth = max(valWidth, runewidth.StringWidth(row[1]))
		}
	}
	if maxWidth > 0 && keyWidth+sepWidth+valWidth > maxWidth {
		available := max(maxWidth-sepWidth, 10)
		// the key column gets at most 30% of the width
		keyWidth = min(keyWidth, max(available*30/100, 5))
		valWidth = max(available-keyWidth, 5)
	}
	sep := strings.Repeat(" ", sepWidth)

	var b strings.Builder
	headerKey, headerValue := padRight("KEY", keyWidth), padRight("VALUE", valWidth)
	separator := strings.Repeat("─", keyWidth+sepWidth+valWidth)
	if !noColor {
		headerKey, headerValue = headerStyle.Render(headerKey), headerStyle.Render(headerValue)
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(headerKey + sep + headerValue + "\n")
	b.WriteString(separator + "\n")
	for _, row := range rows {
		var key, val string
		if len(row) > 0 {
			key = row[0]
		}
		if len(row) > 1 {
			val = row[1]
		}
		keyStr, valStr := padRight(key, keyWidth), padRight(val, valWidth)
		if !noColor {
			keyStr, valStr = keyStyle.Render(keyStr), valueStyle.Render(valStr)
		}
		b.WriteString(strings.TrimRight(keyStr+sep+valStr, " ") + "\n")
	}
	return b.String()
}
