package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode reads a JSON or YAML document into a generic map. YAML input is normalized through JSON
// so that both encodings produce the same value types (float64 numbers, []any lists).
func Decode(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidDocument)
	}

	var doc map[string]any

	jsonErr := json.Unmarshal(trimmed, &doc)
	if jsonErr == nil {
		if doc == nil {
			return nil, fmt.Errorf("%w: document must be an object", ErrInvalidDocument)
		}

		return doc, nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, jsonErr)
	}

	var fromYAML map[string]any
	if err := yaml.Unmarshal(trimmed, &fromYAML); err != nil {
		return nil, fmt.Errorf("%w: YAML parse error: %w", ErrInvalidDocument, err)
	}

	if fromYAML == nil {
		return nil, fmt.Errorf("%w: document must be an object", ErrInvalidDocument)
	}

	normalized, err := json.Marshal(fromYAML)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return doc, nil
}
