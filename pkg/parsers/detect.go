package parsers

import (
	"fmt"

	"github.com/dukex/migromat/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

type signature struct {
	platform models.Platform
	schema   *gojsonschema.Schema
}

var objectListSchema = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "object"},
}

// signatures are checked in order; the first schema that validates wins.
var signatures = []signature{
	{
		platform: models.PlatformNodeGraph,
		schema: mustSchema(map[string]any{
			"type":     "object",
			"required": []any{"nodes", "connections"},
			"properties": map[string]any{
				"nodes":       objectListSchema,
				"connections": map[string]any{"type": "object"},
			},
		}),
	},
	{
		platform: models.PlatformTriggerAction,
		schema: mustSchema(map[string]any{
			"type":     "object",
			"required": []any{"trigger", "steps"},
			"properties": map[string]any{
				"trigger": map[string]any{"type": []any{"object", "null"}},
				"steps":   objectListSchema,
			},
		}),
	},
	{
		platform: models.PlatformModuleFlow,
		schema: mustSchema(map[string]any{
			"type": "object",
			"anyOf": []any{
				map[string]any{"required": []any{"flow"}},
				map[string]any{"required": []any{"scenario"}},
			},
			"properties": map[string]any{
				"flow":    objectListSchema,
				"modules": objectListSchema,
			},
		}),
	},
}

func mustSchema(schema map[string]any) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid platform signature: %v", err))
	}

	return compiled
}

// DetectPlatform returns the platform whose structural signature the document matches.
func DetectPlatform(doc map[string]any) (models.Platform, error) {
	if len(doc) == 0 {
		return "", newPlatformDetectionError(doc)
	}

	for _, sig := range signatures {
		result, err := sig.schema.Validate(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}

		if result.Valid() {
			return sig.platform, nil
		}
	}

	return "", newPlatformDetectionError(doc)
}
