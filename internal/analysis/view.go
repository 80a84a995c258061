package analysis

import (
	"iter"
	"slices"

	"github.com/roach88/shadegraph/internal/graph"
)

// GraphView is the per-compilation projection of a graph: which nodes feed
// the roots and the order to visit them in. It borrows the store and must
// not outlive the compilation that built it.
type GraphView struct {
	Graph *graph.Store
	Roots []graph.NodeID

	// Reachable is the upstream closure of Roots.
	Reachable map[graph.NodeID]struct{}

	// TopoOrder covers every node in the graph, reachable or not.
	TopoOrder []graph.NodeID
}

// BuildGraphView checks every root exists, then computes the topological
// order and the reachable set. Empty roots yield an empty Reachable set and
// a full TopoOrder.
func BuildGraphView(g *graph.Store, roots []graph.NodeID) (*GraphView, error) {
	for _, r := range roots {
		if !g.HasNode(r) {
			return nil, &graph.Error{Kind: graph.NodeNotFound, Node: r}
		}
	}

	order, err := TopologicalSort(g)
	if err != nil {
		return nil, err
	}

	return &GraphView{
		Graph:     g,
		Roots:     slices.Clone(roots),
		Reachable: ReachableFrom(g, roots),
		TopoOrder: order,
	}, nil
}

// IsReachable reports whether id feeds one of the roots.
func (v *GraphView) IsReachable(id graph.NodeID) bool {
	_, ok := v.Reachable[id]
	return ok
}

// ReachableInOrder yields the reachable nodes in topological order.
func (v *GraphView) ReachableInOrder() iter.Seq[graph.NodeID] {
	return func(yield func(graph.NodeID) bool) {
		for _, id := range v.TopoOrder {
			if !v.IsReachable(id) {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

// Unreachable returns the nodes outside the reachable set, in topological order.
func (v *GraphView) Unreachable() []graph.NodeID {
	var out []graph.NodeID
	for _, id := range v.TopoOrder {
		if !v.IsReachable(id) {
			out = append(out, id)
		}
	}
	return out
}
