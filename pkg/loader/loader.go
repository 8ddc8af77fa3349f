// Package loader reads the records to filter from JSON, NDJSON, YAML and
// TOML input, detecting the format from the content.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a detected input format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatNDJSON   Format = "ndjson"
	FormatYAML     Format = "yaml"
	FormatMultiDoc Format = "yaml-multidoc"
	FormatTOML     Format = "toml"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty input")

var (
	// TOML section headers: [server], [[items]], ["table name"], [database.credentials].
	// JSON arrays like [1, 2, 3] do not match.
	sectionPattern = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// TOML key = value, as opposed to YAML key: value.
	keyValuePattern = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// Detect guesses the format of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	switch {
	case strings.Contains(input, "\n---") || strings.HasPrefix(input, "---"):
		return FormatMultiDoc
	case isLikelyNDJSON(strings.Split(input, "\n")):
		return FormatNDJSON
	// TOML [section] headers look like JSON arrays, so TOML is checked first
	case isLikelyTOML(input):
		return FormatTOML
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		return FormatJSON
	}
	return FormatYAML
}

// LoadData parses input and returns one element per document: NDJSON lines
// and YAML documents each become an element, other formats yield one.
func LoadData(input string) ([]any, Format, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, "", ErrEmpty
	}
	format := Detect(input)
	var parse func([]byte, any) error
	switch format {
	case FormatMultiDoc:
		docs, err := loadMultiDocYAML(input)
		return docs, format, err
	case FormatNDJSON:
		docs, err := loadNDJSON(input)
		return docs, format, err
	case FormatYAML:
		docs, err := loadSingle(input, yaml.Unmarshal, format)
		return docs, format, err
	case FormatTOML:
		parse = toml.Unmarshal
	default:
		parse = json.Unmarshal
	}
	docs, err := loadSingle(input, parse, format)
	if err != nil {
		// YAML accepts most of what the stricter parsers reject
		if yamlDocs, yerr := loadSingle(input, yaml.Unmarshal, FormatYAML); yerr == nil {
			return yamlDocs, FormatYAML, nil
		}
	}
	return docs, format, err
}

// LoadRoot parses input into a single root node. Multi-document inputs are
// returned as a list.
func LoadRoot(input string) (any, Format, error) {
	docs, format, err := LoadData(input)
	if err != nil {
		return nil, format, err
	}
	if len(docs) == 1 && format != FormatNDJSON && format != FormatMultiDoc {
		return docs[0], format, nil
	}
	return docs, format, nil
}

// LoadReader reads r fully and parses it with LoadRoot.
func LoadReader(r io.Reader) (any, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return LoadRoot(string(data))
}

// LoadFile reads a file and parses it into a single root node.
func LoadFile(path string) (any, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	return LoadReader(f)
}

func loadSingle(input string, unmarshal func([]byte, any) error, format Format) ([]any, error) {
	var data any
	if err := unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(string(format)), err)
	}
	return []any{data}, nil
}

// loadMultiDocYAML parses YAML with multiple documents (separated by ---).
// Empty documents are skipped.
func loadMultiDocYAML(input string) ([]any, error) {
	var results []any
	decoder := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if doc != nil {
			results = append(results, doc)
		}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return results, nil
}

// loadNDJSON parses newline-delimited JSON. Every non-empty line must be a
// JSON value.
func loadNDJSON(input string) ([]any, error) {
	var results []any
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("invalid NDJSON at line %d: %w", i+1, err)
		}
		results = append(results, obj)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return results, nil
}

// isLikelyNDJSON heuristic: returns true if the input looks like newline-delimited JSON.
// A majority of several non-empty lines must start with '{' or '[', and the
// first line must be a complete JSON value so pretty-printed JSON is not
// mistaken for NDJSON.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	first := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if first == "" {
			first = trimmed
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2 && json.Valid([]byte(first))
}

// isLikelyTOML heuristic: returns true if the input has a section header
// or mostly key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if sectionPattern.MatchString(line) {
			sectionCount++
		}
		if keyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}
	return sectionCount > 0 || (nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2)
}
