package mapping

import (
	"fmt"

	jsonata "github.com/blues/jsonata-go"

	"github.com/dukex/migromat/pkg/models"
)

// actionExpr picks the trigger/action "action" field for a step that did not declare one.
var actionExpr = jsonata.MustCompile(
	`parameters.operation ? parameters.operation : (parameters.action ? parameters.action : name)`,
)

// ActionFor returns the action name for a trigger/action step.
func ActionFor(step *models.CanonicalStep) (string, error) {
	if step.Action != "" {
		return step.Action, nil
	}

	parameters := step.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	result, err := actionExpr.Eval(map[string]any{
		"parameters": parameters,
		"name":       step.Name,
	})
	if err != nil {
		return "", fmt.Errorf("evaluate action expression for step %s: %w", step.ID, err)
	}

	if s, ok := result.(string); ok {
		return s, nil
	}

	return fmt.Sprint(result), nil
}
