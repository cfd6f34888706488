package converters

import (
	"fmt"

	"github.com/dukex/migromat/pkg/mapping"
	"github.com/dukex/migromat/pkg/models"
)

const (
	nodeStartX  = 250
	nodeSpacing = 200
	nodeY       = 300

	executionOrderV1 = "v1"
)

// ToNodeGraph lays the steps out left to right and chains them with main connections.
func (c *Converter) ToNodeGraph(wf *models.CanonicalWorkflow) (doc *models.NodeGraphDocument, report *Report, err error) {
	if err := c.validate(wf, models.PlatformNodeGraph); err != nil {
		return nil, nil, err
	}

	defer c.guard(wf, models.PlatformNodeGraph, &err)

	report = newReport()
	nodes := make([]*models.GraphNode, 0, len(wf.Steps))
	names := map[string]bool{}

	for _, step := range wf.Steps {
		if entry, _ := mapping.LookupModule(step.Kind); entry.Drop() {
			report.dropped("step %q has no node equivalent and was dropped", step.Name)

			continue
		}

		nodeType := mapping.GenericNodeType
		if entry, ok := mapping.LookupApp(step.Kind, step.Name); ok {
			nodeType = entry.NodeType
			report.mapped()
		} else {
			report.unmapped("step %q (%s) mapped to generic HTTP node", step.Name, step.Kind)
		}

		name := step.Name
		for suffix := 2; names[name]; suffix++ {
			name = fmt.Sprintf("%s %d", step.Name, suffix)
		}

		names[name] = true

		position := len(nodes)
		nodes = append(nodes, &models.GraphNode{
			ID:          step.ID,
			Name:        name,
			Type:        nodeType,
			TypeVersion: 1,
			Position:    [2]int{nodeStartX + position*nodeSpacing, nodeY},
			Parameters:  cloneParameters(step.Parameters),
			Credentials: cloneParameters(step.Credentials),
		})
	}

	connections := make(map[string]models.GraphNodeConnections, len(nodes))
	for i := 1; i < len(nodes); i++ {
		connections[nodes[i-1].Name] = models.GraphNodeConnections{
			Main: [][]models.GraphConnection{{{Node: nodes[i].Name, Type: "main", Index: 0}}},
		}
	}

	c.logger.Info("Converted to node-graph", "workflow", wf.Name, "nodes", len(nodes))

	return &models.NodeGraphDocument{
		Name:        wf.Name,
		Nodes:       nodes,
		Connections: connections,
		Settings:    models.GraphSettings{ExecutionOrder: executionOrderV1},
	}, report.finish(), nil
}
