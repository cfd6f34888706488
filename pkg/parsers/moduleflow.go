package parsers

import (
	"log/slog"

	"github.com/dukex/migromat/pkg/complexity"
	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/models"
)

// ModuleFlowParser reads make blueprints. Modules live under flow, modules or scenario.flow.
type ModuleFlowParser struct {
	logger *slog.Logger
}

func NewModuleFlowParser(logger *slog.Logger) *ModuleFlowParser {
	return &ModuleFlowParser{logger: logger.With("platform", models.PlatformModuleFlow)}
}

func (p *ModuleFlowParser) Parse(doc map[string]any) (*models.CanonicalWorkflow, error) {
	modules, err := p.modules(doc)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Parsing module-flow workflow", "modules", len(modules))

	ids := stepIDs{}
	steps := make([]*models.CanonicalStep, 0, len(modules))

	for i, module := range modules {
		steps = append(steps, &models.CanonicalStep{
			ID:         ids.claim(stringField(module, "id"), i),
			Name:       stringFieldOr(module, "module", placeholderName(i)),
			Kind:       kind.FromType(stringField(module, "type")),
			Parameters: mapField(module, "parameters"),
		})
	}

	return &models.CanonicalWorkflow{
		Name:       stringFieldOr(doc, "name", "Untitled Scenario"),
		Platform:   models.PlatformModuleFlow,
		Steps:      steps,
		Complexity: complexity.Estimate(steps),
		CreatedAt:  now(),
	}, nil
}

func (p *ModuleFlowParser) modules(doc map[string]any) ([]map[string]any, error) {
	for _, key := range []string{"flow", "modules"} {
		modules, err := objectList(doc, key)
		if err != nil || len(modules) > 0 {
			return modules, err
		}
	}

	if scenario, ok := doc["scenario"].(map[string]any); ok {
		return objectList(scenario, "flow")
	}

	return nil, nil
}
