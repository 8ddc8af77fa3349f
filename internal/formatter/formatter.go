// Package formatter renders matched records as YAML, JSON, NDJSON, TOML or
// a terminal table.
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/term"
)

// Format names an output format.
type Format string

const (
	YAML   Format = "yaml"
	JSON   Format = "json"
	NDJSON Format = "ndjson"
	TOML   Format = "toml"
	Table  Format = "table"
)

// Formats lists the supported output formats.
var Formats = []Format{YAML, JSON, NDJSON, TOML, Table}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates s as an output format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Options control rendering.
type Options struct {
	Format  Format
	NoColor bool
	// Width caps table rows; 0 uses the terminal width.
	Width int
	// Columns restricts and orders table columns.
	Columns []string
}

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	keyStyle       lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors for tables. Nil fields fall back
// to the defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	KeyColor       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

func orDefault(c, def color.Color) color.Color {
	if c == nil {
		return def
	}
	return c
}

// SetTableTheme overrides the table styles.
func SetTableTheme(tc TableColors) {
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(orDefault(tc.HeaderFG, defaultHeaderFG)).
		Background(orDefault(tc.HeaderBG, defaultHeaderBG))
	keyStyle = lipgloss.NewStyle().Foreground(orDefault(tc.KeyColor, defaultKeyColor))
	valueStyle = lipgloss.NewStyle().Foreground(orDefault(tc.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(orDefault(tc.SeparatorColor, defaultSeparator))
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	SetTableTheme(TableColors{})
}

// Write renders items to w.
func Write(w io.Writer, items []any, opts Options) error {
	if items == nil {
		items = []any{}
	}
	switch opts.Format {
	case YAML, "":
		out, err := FormatYAML(items, YAMLFormatOptions{LiteralBlockStrings: true})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case NDJSON:
		enc := json.NewEncoder(w)
		for _, it := range items {
			if err := enc.Encode(it); err != nil {
				return err
			}
		}
		return nil
	case TOML:
		// TOML documents are tables, so the list goes under a key
		return toml.NewEncoder(w).Encode(map[string]any{"items": items})
	case Table:
		width := opts.Width
		if width <= 0 {
			width = terminalWidth()
		}
		_, err := io.WriteString(w, RenderTable(items, opts.Columns, opts.NoColor, width))
		return err
	}
	return fmt.Errorf("%q: %w", opts.Format, ErrUnknownFormat)
}

// Stringify returns a compact single-line representation of v.
func Stringify(v any) string {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return escapeScalarString(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case fmt.Stringer:
		return escapeScalarString(t.String())
	}
	switch rv.Kind() { //nolint:exhaustive // only complex types need JSON marshaling
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Pointer:
		return Stringify(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v)
}

// escapeScalarString flattens line breaks so table rows stay single-line.
func escapeScalarString(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\\n")
}

// truncate shortens s to maxLen display cells, ending in an ellipsis when
// there is room for one.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}

// terminalWidth returns the width of stdout, or 120 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120
	}
	return width
}
