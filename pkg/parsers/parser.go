// Package parsers detects the platform of an uploaded workflow document and normalizes it into the
// canonical model.
package parsers

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/migromat/pkg/models"
)

// Parser normalizes one platform's document shape into a CanonicalWorkflow.
type Parser interface {
	Parse(doc map[string]any) (*models.CanonicalWorkflow, error)
}

// ForPlatform returns the parser registered for a platform tag.
//
//nolint:ireturn
func ForPlatform(platform models.Platform, logger *slog.Logger) (Parser, error) {
	switch platform {
	case models.PlatformNodeGraph:
		return NewNodeGraphParser(logger), nil
	case models.PlatformTriggerAction:
		return NewTriggerActionParser(logger), nil
	case models.PlatformModuleFlow:
		return NewModuleFlowParser(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
}

// Parse normalizes a document already tagged with its platform.
func Parse(doc map[string]any, platform models.Platform, logger *slog.Logger) (*models.CanonicalWorkflow, error) {
	parser, err := ForPlatform(platform, logger)
	if err != nil {
		return nil, err
	}

	return parser.Parse(doc)
}

// DetectAndParse runs platform detection followed by the matching parser.
func DetectAndParse(doc map[string]any, logger *slog.Logger) (*models.CanonicalWorkflow, error) {
	platform, err := DetectPlatform(doc)
	if err != nil {
		return nil, err
	}

	return Parse(doc, platform, logger)
}

var now = func() time.Time { return time.Now().UTC() }

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func stringFieldOr(m map[string]any, key, fallback string) string {
	if v := stringField(m, key); v != "" {
		return v
	}

	return fallback
}

func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok && v != nil {
		return v
	}

	return map[string]any{}
}

func objectList(m map[string]any, key string) ([]map[string]any, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrMalformedDocument, key)
	}

	result := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrMalformedDocument, key, i)
		}

		result = append(result, obj)
	}

	return result, nil
}

func placeholderName(index int) string {
	return fmt.Sprintf("Step %d", index+1)
}

// stepIDs hands out identifiers that stay unique within one workflow.
type stepIDs map[string]bool

func (s stepIDs) claim(candidate string, index int) string {
	id := candidate
	if id == "" || s[id] {
		id = strconv.Itoa(index)
	}

	for suffix := 1; s[id]; suffix++ {
		id = fmt.Sprintf("%d_%d", index, suffix)
	}

	s[id] = true

	return id
}
