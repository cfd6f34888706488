package parsers

import (
	"log/slog"
	"strings"

	"github.com/dukex/migromat/pkg/complexity"
	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/models"
)

// NodeGraphParser reads n8n documents: a node list plus a connection map keyed by node name.
type NodeGraphParser struct {
	logger *slog.Logger
}

func NewNodeGraphParser(logger *slog.Logger) *NodeGraphParser {
	return &NodeGraphParser{logger: logger.With("platform", models.PlatformNodeGraph)}
}

func (p *NodeGraphParser) Parse(doc map[string]any) (*models.CanonicalWorkflow, error) {
	nodes, err := objectList(doc, "nodes")
	if err != nil {
		return nil, err
	}

	p.logger.Info("Parsing node-graph workflow", "nodes", len(nodes))

	ids := stepIDs{}
	names := make([]string, len(nodes))
	steps := make([]*models.CanonicalStep, len(nodes))

	for i, node := range nodes {
		step := &models.CanonicalStep{
			ID:          ids.claim(stringField(node, "id"), i),
			Name:        stringFieldOr(node, "name", placeholderName(i)),
			Kind:        kind.FromType(stringField(node, "type")),
			Parameters:  mapField(node, "parameters"),
			Credentials: mapField(node, "credentials"),
			Position:    node["position"],
		}

		names[i] = step.Name
		steps[i] = step
	}

	order, cyclic := executionOrder(names, mapField(doc, "connections"))

	ordered := make([]*models.CanonicalStep, 0, len(steps))
	for _, index := range order {
		ordered = append(ordered, steps[index])
	}

	metadata := map[string]any{}
	for target, source := range map[string]string{
		"created_at": "createdAt",
		"updated_at": "updatedAt",
		"tags":       "tags",
	} {
		if value, ok := doc[source]; ok && value != nil {
			metadata[target] = value
		}
	}

	if len(cyclic) > 0 {
		involved := make([]string, 0, len(cyclic))
		for _, index := range cyclic {
			involved = append(involved, names[index])
		}

		p.logger.Warn("Connection cycle detected, keeping document order for involved nodes", "nodes", involved)
		metadata["warnings"] = []string{"connection cycle between nodes; document order kept for: " + strings.Join(involved, ", ")}
	}

	if len(metadata) == 0 {
		metadata = nil
	}

	return &models.CanonicalWorkflow{
		Name:       stringFieldOr(doc, "name", "Untitled Workflow"),
		Platform:   models.PlatformNodeGraph,
		Steps:      ordered,
		Complexity: complexity.Estimate(ordered),
		Metadata:   metadata,
		CreatedAt:  now(),
	}, nil
}
