package analysis

import "github.com/roach88/shadegraph/internal/graph"

// TopologicalSort orders every node of g so that each node follows all of
// its upstream dependencies.
//
// DetectCycles runs first; any cycle fails fast with a CycleDetected error
// listing all of them. The ordering itself is Kahn's algorithm over in-degrees
// counted from links only, so a node with no connected inputs starts at zero.
// The ready queue is seeded in id order and drained FIFO, which makes the
// result deterministic. Disconnected nodes are included.
func TopologicalSort(g *graph.Store) ([]graph.NodeID, error) {
	if cycles := DetectCycles(g); len(cycles) > 0 {
		return nil, &graph.Error{Kind: graph.CycleDetected, Cycles: cycles}
	}

	ids := g.NodeIDs()
	inDegree := make(map[graph.NodeID]int, len(ids))
	edges := make(map[graph.NodeID][]graph.NodeID, len(ids))
	for _, id := range ids {
		for _, succ := range successors(g, id) {
			edges[id] = append(edges[id], succ)
			inDegree[succ]++
		}
	}

	queue := make([]graph.NodeID, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]graph.NodeID, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, succ := range edges[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	// Unreachable once DetectCycles came back empty.
	if len(order) != len(ids) {
		return nil, &graph.Error{Kind: graph.CycleDetected}
	}
	return order, nil
}
