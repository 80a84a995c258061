package analysis

import "github.com/roach88/shadegraph/internal/graph"

// ReachableFrom returns the roots plus every node whose outputs transitively
// feed one of them, following links backward through input sockets.
//
// Unknown roots are ignored. The walk uses an explicit stack, so deep chains
// do not grow the goroutine stack.
func ReachableFrom(g *graph.Store, roots []graph.NodeID) map[graph.NodeID]struct{} {
	reached := make(map[graph.NodeID]struct{})

	var stack []graph.NodeID
	for _, r := range roots {
		if g.HasNode(r) {
			stack = append(stack, r)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := reached[id]; ok {
			continue
		}
		reached[id] = struct{}{}

		for _, up := range predecessors(g, id) {
			if _, ok := reached[up]; !ok {
				stack = append(stack, up)
			}
		}
	}
	return reached
}
