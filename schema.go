package jsonmend

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/kaptinlin/jsonschema"
)

// ParseState tells which variant an Outcome is.
type ParseState string

const (
	// ParseStateSuccessful means the payload parsed without repair.
	ParseStateSuccessful ParseState = "successful"

	// ParseStateRepaired means the payload parsed after repair.
	ParseStateRepaired ParseState = "repaired"

	// ParseStateFailed means the payload could not be parsed even after repair.
	ParseStateFailed ParseState = "failed"
)

// StringFieldsFromSchema returns the names of all properties, at any depth,
// that the JSON Schema declares as strings. Pass them to WithStringFields so
// bare numerals in those fields get quoted.
func StringFieldsFromSchema(schema []byte) ([]string, error) {
	compiler := jsonschema.NewCompiler()
	if _, err := compiler.Compile(schema); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	fields := map[string]struct{}{}
	collectStringFields(doc, fields)
	return slices.Sorted(maps.Keys(fields)), nil
}

func collectStringFields(node any, fields map[string]struct{}) {
	switch n := node.(type) {
	case map[string]any:
		if props, ok := n["properties"].(map[string]any); ok {
			for name, prop := range props {
				if isStringTyped(prop) {
					fields[name] = struct{}{}
				}
			}
		}
		for _, child := range n {
			collectStringFields(child, fields)
		}
	case []any:
		for _, child := range n {
			collectStringFields(child, fields)
		}
	}
}

func isStringTyped(prop any) bool {
	m, ok := prop.(map[string]any)
	if !ok {
		return false
	}
	switch t := m["type"].(type) {
	case string:
		return t == "string"
	case []any:
		return slices.ContainsFunc(t, func(v any) bool {
			s, ok := v.(string)
			return ok && s == "string"
		})
	}
	return false
}
