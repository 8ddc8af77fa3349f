package schema

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Hint carries what a JSON Schema says about one property. Hints refine
// inference: they pick the Go type for a field when the data alone cannot
// (formats such as date-time or uuid), add descriptions, and hide
// deprecated fields.
type Hint struct {
	// Type is the JSON Schema type without "null".
	Type string
	// Format is the JSON Schema format, e.g. date-time, uuid or decimal.
	Format string
	// Description becomes the member description shown with completions.
	Description string
	// Nullable is set when the type list includes "null".
	Nullable bool
	// Hidden is set for deprecated properties; they are not members.
	Hidden bool
	// Properties describe the fields of an object.
	Properties map[string]*Hint
	// Items describes the elements of an array.
	Items *Hint
}

// ParseHints reads a JSON Schema document (JSON or YAML) and returns the hint
// for one record: the schema itself for an object schema, or its items for
// an array schema.
func ParseHints(doc []byte) (*Hint, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	h := parseHint(raw)
	if h.Type == "array" && h.Items != nil {
		return h.Items, nil
	}
	return h, nil
}

func parseHint(raw map[string]any) *Hint {
	h := &Hint{}
	h.Type, h.Nullable = jsonSchemaType(raw)
	h.Format, _ = raw["format"].(string)
	h.Description, _ = raw["description"].(string)
	if h.Description == "" {
		h.Description, _ = raw["title"].(string)
	}
	if dep, ok := raw["deprecated"].(bool); ok && dep {
		h.Hidden = true
	}
	if items, ok := raw["items"].(map[string]any); ok {
		h.Items = parseHint(items)
	}
	if props, ok := raw["properties"].(map[string]any); ok {
		if h.Type == "" {
			h.Type = "object"
		}
		h.Properties = make(map[string]*Hint, len(props))
		for _, key := range sortedKeys(props) {
			if prop, ok := props[key].(map[string]any); ok {
				h.Properties[key] = parseHint(prop)
			}
		}
	}
	return h
}

// Property returns the hint for key, nil when h is nil or has none.
func (h *Hint) Property(key string) *Hint {
	if h == nil {
		return nil
	}
	return h.Properties[key]
}

// Element returns the item hint, nil when h is nil or has none.
func (h *Hint) Element() *Hint {
	if h == nil {
		return nil
	}
	return h.Items
}

// jsonSchemaType extracts the type string from a property schema.
// Handles both "type": "string" and "type": ["string", "null"].
func jsonSchemaType(prop map[string]any) (string, bool) {
	switch t := prop["type"].(type) {
	case string:
		return t, false
	case []any:
		typ, nullable := "", false
		for _, v := range t {
			switch s, _ := v.(string); s {
			case "null":
				nullable = true
			case "":
			default:
				if typ == "" {
					typ = s
				}
			}
		}
		return typ, nullable
	}
	return "", false
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
