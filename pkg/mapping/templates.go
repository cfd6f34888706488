package mapping

import (
	"strings"

	"github.com/dukex/migromat/pkg/kind"
)

// ParameterTemplate returns a fresh copy of the module-flow parameter template for a step kind.
// Unlike the module table this lookup is by containment, since many kinds share one shape.
// Placeholders such as {{parameters.baseId}} are emitted literally.
func ParameterTemplate(stepKind string) map[string]any {
	normalized := kind.Normalize(stepKind)

	switch {
	case strings.Contains(normalized, "airtable"):
		return map[string]any{
			"base":     "{{parameters.baseId}}",
			"table":    "{{parameters.table}}",
			"typecast": false,
		}
	case kind.AI.Match(stepKind, normalized):
		return map[string]any{
			"model": "gpt-3.5-turbo",
			"messages": []any{
				map[string]any{"role": "user", "content": "{{parameters.prompt}}"},
			},
			"temperature": 0.7,
		}
	case kind.Email.Match(normalized):
		return map[string]any{
			"to":      "{{parameters.to}}",
			"subject": "{{parameters.subject}}",
			"content": "{{parameters.text}}",
		}
	case strings.Contains(normalized, "webhook"):
		return map[string]any{
			"hookType":     "post",
			"responseMode": "onReceived",
		}
	default:
		return map[string]any{}
	}
}
