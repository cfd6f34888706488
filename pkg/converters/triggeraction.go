package converters

import (
	"fmt"
	"strconv"

	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/mapping"
	"github.com/dukex/migromat/pkg/models"
)

const defaultTriggerEvent = "trigger"

// ToTriggerAction splits the steps into exactly one trigger (the first step) and the actions that
// follow. A workflow without steps yields the catch-hook trigger and no actions.
func (c *Converter) ToTriggerAction(wf *models.CanonicalWorkflow) (doc *models.TriggerActionDocument, report *Report, err error) {
	if err := c.validate(wf, models.PlatformTriggerAction); err != nil {
		return nil, nil, err
	}

	defer c.guard(wf, models.PlatformTriggerAction, &err)

	report = newReport()
	doc = &models.TriggerActionDocument{
		Name:        wf.Name,
		Description: fmt.Sprintf("Converted from %s by MigroMat", wf.Platform),
		Trigger: models.TriggerSpec{
			App:    mapping.FallbackTriggerApp,
			Event:  mapping.FallbackEvent,
			Config: map[string]any{},
		},
		Actions: make([]*models.ActionSpec, 0, max(len(wf.Steps)-1, 0)),
	}

	if len(wf.Steps) == 0 {
		c.logger.Info("Converted empty workflow to trigger/action", "workflow", wf.Name)

		return doc, report.finish(), nil
	}

	first := wf.Steps[0]
	event := defaultTriggerEvent

	if declared, ok := first.Parameters["event"].(string); ok && declared != "" {
		event = declared
	}

	doc.Trigger = models.TriggerSpec{
		App:    c.triggerApp(first, report),
		Event:  event,
		Title:  first.Name,
		Config: cloneParameters(first.Parameters),
	}

	for i, step := range wf.Steps[1:] {
		action, err := mapping.ActionFor(step)
		if err != nil {
			return nil, nil, c.fail(wf, models.PlatformTriggerAction, step.ID, err)
		}

		doc.Actions = append(doc.Actions, &models.ActionSpec{
			ID:     strconv.Itoa(i + 1),
			App:    c.triggerApp(step, report),
			Action: action,
			Title:  step.Name,
			Config: cloneParameters(step.Parameters),
		})
	}

	c.logger.Info("Converted to trigger/action", "workflow", wf.Name, "actions", len(doc.Actions))

	return doc, report.finish(), nil
}

func (c *Converter) triggerApp(step *models.CanonicalStep, report *Report) string {
	if entry, ok := mapping.LookupApp(step.Kind, step.Name); ok {
		report.mapped()

		return entry.TriggerApp
	}

	if normalized := kind.Normalize(step.Kind); normalized != "" && step.Kind != models.UnknownKind {
		report.unmapped("app %q is not in the app table and was kept as is", normalized)

		return normalized
	}

	report.unmapped("step %q has no known app, using %s", step.Name, mapping.FallbackTriggerApp)

	return mapping.FallbackTriggerApp
}
