package parsers

import (
	"log/slog"
	"strconv"

	"github.com/dukex/migromat/pkg/complexity"
	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/models"
)

// TriggerActionParser reads zapier documents: one trigger object followed by a list of steps.
type TriggerActionParser struct {
	logger *slog.Logger
}

func NewTriggerActionParser(logger *slog.Logger) *TriggerActionParser {
	return &TriggerActionParser{logger: logger.With("platform", models.PlatformTriggerAction)}
}

func (p *TriggerActionParser) Parse(doc map[string]any) (*models.CanonicalWorkflow, error) {
	actions, err := objectList(doc, "steps")
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(actions)+1)
	if trigger, ok := doc["trigger"].(map[string]any); ok {
		entries = append(entries, trigger)
	}

	entries = append(entries, actions...)

	p.logger.Info("Parsing trigger/action workflow", "steps", len(entries))

	steps := make([]*models.CanonicalStep, 0, len(entries))
	for i, entry := range entries {
		app := stringField(entry, "app")
		action := stringField(entry, "action")

		parameters := mapField(entry, "params")
		if _, ok := entry["params"]; !ok {
			parameters = mapField(entry, "parameters")
		}

		steps = append(steps, &models.CanonicalStep{
			ID:         strconv.Itoa(i),
			Name:       stringFieldOr(entry, "app", "Unknown") + " - " + stringFieldOr(entry, "action", "Action"),
			Kind:       kind.FromType(app),
			Parameters: parameters,
			Action:     action,
		})
	}

	return &models.CanonicalWorkflow{
		Name:       stringFieldOr(doc, "name", "Untitled Zap"),
		Platform:   models.PlatformTriggerAction,
		Steps:      steps,
		Complexity: complexity.Estimate(steps),
		CreatedAt:  now(),
	}, nil
}
