package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"json object", `{"name": "test"}`, FormatJSON},
		{"json array", `[1, 2, 3]`, FormatJSON},
		{"pretty json", "[\n  {\"a\": 1},\n  {\"a\": 2}\n]", FormatJSON},
		{"ndjson", "{\"a\": 1}\n{\"a\": 2}", FormatNDJSON},
		{"yaml", "name: test\nvalue: 42", FormatYAML},
		{"yaml list", "- a\n- b", FormatYAML},
		{"multi doc", "a: 1\n---\na: 2", FormatMultiDoc},
		{"leading separator", "---\na: 1", FormatMultiDoc},
		{"toml section", "[server]\nhost = \"localhost\"", FormatTOML},
		{"toml keys", "name = \"test\"\nvalue = 42", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestLoadData(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLen    int
		wantFormat Format
	}{
		{"single object", `{"name": "test", "value": 42}`, 1, FormatJSON},
		{"single array", `[1, 2, 3]`, 1, FormatJSON},
		{"yaml mapping", "name: test\nvalue: 42", 1, FormatYAML},
		{"yaml list", "- name: a\n- name: b", 1, FormatYAML},
		{"multi doc", "name: a\n---\nname: b\n---\n", 2, FormatMultiDoc},
		{"ndjson", "{\"a\": 1}\n{\"a\": 2}\n{\"a\": 3}", 3, FormatNDJSON},
		{"ndjson with blank lines", "{\"a\": 1}\n\n{\"a\": 2}\n", 2, FormatNDJSON},
		{"ndjson with carriage returns", "{\"a\": 1}\r\n{\"a\": 2}\r\n", 2, FormatNDJSON},
		{"toml", "[server]\nhost = \"localhost\"\nport = 8080", 1, FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, format, err := LoadData(tt.input)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantFormat, format)
		})
	}

	t.Run("invalid JSON falls back to YAML", func(t *testing.T) {
		got, format, err := LoadData(`{invalid}`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, FormatYAML, format)
		// YAML parses {invalid} as a flow mapping with key "invalid" and nil value
		assert.Equal(t, map[string]any{"invalid": nil}, got[0])
	})

	t.Run("toml values", func(t *testing.T) {
		got, _, err := LoadData("[server]\nhost = \"localhost\"\nport = 8080")
		require.NoError(t, err)
		server := got[0].(map[string]any)["server"].(map[string]any)
		assert.Equal(t, "localhost", server["host"])
		assert.EqualValues(t, 8080, server["port"])
	})

	t.Run("bad ndjson line", func(t *testing.T) {
		_, _, err := LoadData("{\"a\": 1}\n{\"a\": 2}\n{broken")
		assert.ErrorContains(t, err, "line 3")
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := LoadData("  \n ")
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestLoadRoot(t *testing.T) {
	root, format, err := LoadRoot(`[{"a": 1}, {"a": 2}]`)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)
	assert.Len(t, root, 2)

	root, _, err = LoadRoot("{\"a\": 1}\n{\"a\": 2}")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": float64(1)}, map[string]any{"a": float64(2)}}, root)

	root, _, err = LoadRoot("a: 1\n---\n")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": 1}}, root, "multi-document input is always a list")
}

func TestLoadReaderAndFile(t *testing.T) {
	root, _, err := LoadReader(strings.NewReader("name: test"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "test"}, root)

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "x"}]`), 0o600))
	root, format, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)
	assert.Equal(t, []any{map[string]any{"name": "x"}}, root)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsLikelyTOML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"section header", "[server]\nhost = \"localhost\"", true},
		{"array of tables", "[[items]]\nname = \"item1\"", true},
		{"dotted section", "[database.credentials]\nuser = \"x\"", true},
		{"key-value assignments", "name = \"test\"\nvalue = 42\nenabled = true", true},
		{"quoted keys", "\"table name\" = \"value\"\n\"another-key\" = 42", true},
		{"comments ignored", "# config\nname = \"x\"", true},
		{"yaml", "name: test\nvalue: 42", false},
		{"json object", `{"name": "test"}`, false},
		{"json array", `[1, 2, 3]`, false},
		{"yaml list", "- item1\n- item2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isLikelyTOML(tt.input))
		})
	}
}
