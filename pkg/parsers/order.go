package parsers

import "slices"

// executionOrder sorts node indexes topologically using the connection map keyed by node name.
// Ready nodes are released in document order, so an unconnected graph keeps its original order.
// Nodes caught in a cycle are appended in document order and returned separately.
func executionOrder(names []string, connections map[string]any) (order []int, cyclic []int) {
	indexByName := make(map[string]int, len(names))
	for i, name := range names {
		if _, taken := indexByName[name]; !taken {
			indexByName[name] = i
		}
	}

	successors := make([][]int, len(names))
	inDegree := make([]int, len(names))

	for source, outputs := range connections {
		from, ok := indexByName[source]
		if !ok {
			continue
		}

		seen := map[int]bool{}
		for _, to := range connectionTargets(outputs, indexByName) {
			if seen[to] {
				continue
			}

			seen[to] = true
			successors[from] = append(successors[from], to)
			inDegree[to]++
		}
	}

	ready := make([]int, 0, len(names))
	for i := range names {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order = make([]int, 0, len(names))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)

		for _, next := range successors[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}

		slices.Sort(ready)
	}

	if len(order) == len(names) {
		return order, nil
	}

	for i := range names {
		if inDegree[i] > 0 {
			cyclic = append(cyclic, i)
		}
	}

	return append(order, cyclic...), cyclic
}

// connectionTargets walks {"main": [[{"node": "X"}]]} for every output type.
func connectionTargets(outputs any, indexByName map[string]int) []int {
	byType, ok := outputs.(map[string]any)
	if !ok {
		return nil
	}

	types := make([]string, 0, len(byType))
	for outputType := range byType {
		types = append(types, outputType)
	}

	slices.Sort(types)

	var targets []int

	for _, outputType := range types {
		branches, _ := byType[outputType].([]any)
		for _, branch := range branches {
			links, _ := branch.([]any)
			for _, link := range links {
				obj, _ := link.(map[string]any)
				if to, ok := indexByName[stringField(obj, "node")]; ok {
					targets = append(targets, to)
				}
			}
		}
	}

	return targets
}
