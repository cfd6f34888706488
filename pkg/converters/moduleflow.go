package converters

import (
	"strings"

	"github.com/dukex/migromat/pkg/mapping"
	"github.com/dukex/migromat/pkg/models"
)

const (
	moduleStartX  = 100
	moduleSpacing = 200
	moduleY       = 100

	defaultScenarioName = "Converted Scenario"
)

func scenarioMetadata() models.ScenarioMetadata {
	return models.ScenarioMetadata{
		Instant: false,
		Version: 1,
		Scenario: models.ScenarioSettings{
			Roundtrips:            1,
			MaxErrors:             3,
			AutoCommit:            true,
			AutoCommitTriggerLast: true,
		},
		Designer: models.ScenarioDesigner{Orphans: make([]any, 0)},
		Zone:     "us1.make.com",
	}
}

// ToModuleFlow builds a scenario blueprint. Steps mapped to the drop sentinel are skipped; the rest
// get sequential ids and x coordinates increasing in step order.
func (c *Converter) ToModuleFlow(wf *models.CanonicalWorkflow) (doc *models.ModuleFlowDocument, report *Report, err error) {
	if err := c.validate(wf, models.PlatformModuleFlow); err != nil {
		return nil, nil, err
	}

	defer c.guard(wf, models.PlatformModuleFlow, &err)

	report = newReport()
	flow := make([]*models.ModuleFlowModule, 0, len(wf.Steps))

	for _, step := range wf.Steps {
		entry, matched := mapping.LookupModule(step.Kind)
		parameters := mapping.ParameterTemplate(step.Kind)

		switch {
		case entry.Drop():
			report.dropped("step %q has no module equivalent and was dropped", step.Name)

			continue
		case matched:
			report.mapped()
		case step.Kind == models.UnknownKind && strings.Contains(step.Name, ":"):
			entry = mapping.ModuleEntry{Module: step.Name, Version: 1}
			parameters = cloneParameters(step.Parameters)
			report.mapped()
		default:
			report.unmapped("step %q (%s) mapped to generic %s module", step.Name, step.Kind, entry.Module)
		}

		position := len(flow)
		flow = append(flow, &models.ModuleFlowModule{
			ID:         position + 1,
			Module:     entry.Module,
			Version:    entry.Version,
			Parameters: parameters,
			Mapper:     map[string]any{},
			Metadata: models.ModuleMetadata{
				Designer: models.Designer{X: moduleStartX + position*moduleSpacing, Y: moduleY},
				Restore: models.ModuleRestore{
					Parameters: map[string]any{},
					Expect:     map[string]any{},
				},
				Parameters: make([]any, 0),
				Expect:     make([]any, 0),
			},
		})
	}

	name := wf.Name
	if name == "" {
		name = defaultScenarioName
	}

	c.logger.Info("Converted to module-flow", "workflow", name, "modules", len(flow), "dropped", report.Dropped)

	return &models.ModuleFlowDocument{
		Name:     name,
		Flow:     flow,
		Metadata: scenarioMetadata(),
	}, report.finish(), nil
}
