package analysis

import (
	"fmt"
	"strings"

	"github.com/roach88/shadegraph/internal/graph"
)

// DetectCycles finds the cycles of g.
//
// The algorithm is a depth-first search started from every node in id order.
// A recursion stack tracks the current path; an edge back to a node still on
// the stack closes a cycle, recorded as the stack suffix starting at that node.
//
// The same cycle can be reached from several entry points, each time as a
// different rotation. Every cycle is rotated to start at its smallest id
// before comparison, so [2 3 1] and [1 2 3] count once while [1 3 2] (the
// opposite direction) stays distinct.
//
// An acyclic graph returns an empty slice.
func DetectCycles(g *graph.Store) [][]graph.NodeID {
	var (
		cycles  = [][]graph.NodeID{}
		seen    = make(map[string]struct{})
		visited = make(map[graph.NodeID]bool)
		onStack = make(map[graph.NodeID]int) // node → position in stack
		stack   []graph.NodeID
	)

	var visit func(graph.NodeID)
	visit = func(v graph.NodeID) {
		visited[v] = true
		onStack[v] = len(stack)
		stack = append(stack, v)

		for _, w := range successors(g, v) {
			if pos, ok := onStack[w]; ok {
				cycle := canonicalRotation(stack[pos:])
				key := cycleKey(cycle)
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[w] {
				visit(w)
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, v)
	}

	for _, id := range g.NodeIDs() {
		if !visited[id] {
			visit(id)
		}
	}
	return cycles
}

// canonicalRotation copies cycle rotated so that its smallest id comes first.
func canonicalRotation(cycle []graph.NodeID) []graph.NodeID {
	start := 0
	for i, id := range cycle {
		if id < cycle[start] {
			start = i
		}
	}
	out := make([]graph.NodeID, 0, len(cycle))
	out = append(out, cycle[start:]...)
	out = append(out, cycle[:start]...)
	return out
}

func cycleKey(cycle []graph.NodeID) string {
	var b strings.Builder
	for i, id := range cycle {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", uint32(id))
	}
	return b.String()
}
