package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

// GraphBuilder wraps a graph.Store with terse helpers for building test
// graphs. Every helper fails the test immediately on error.
//
// Socket names follow the document defaults: value nodes expose "out",
// math nodes "lhs", "rhs" and "out", generic nodes "in" and "out".
type GraphBuilder struct {
	t testing.TB
	G *graph.Store
}

// NewGraph returns a builder over a fresh store.
func NewGraph(t testing.TB) *GraphBuilder {
	t.Helper()
	return &GraphBuilder{t: t, G: graph.New()}
}

// Value adds a Value node of type typ.
func (b *GraphBuilder) Value(typ ir.ValueType) graph.NodeID {
	return b.G.AddNode(graph.Value{Type: typ}, graph.Position{}, nil,
		[]graph.Port{{Name: "out", Type: typ}})
}

// Math adds a Math node whose inputs and output are all typ.
func (b *GraphBuilder) Math(op ir.BinaryOp, typ ir.ValueType) graph.NodeID {
	return b.MathWith(op, typ, graph.Required("lhs", typ), graph.Required("rhs", typ))
}

// MathWith adds a Math node with explicit input definitions.
func (b *GraphBuilder) MathWith(op ir.BinaryOp, out ir.ValueType, lhs, rhs graph.InputDef) graph.NodeID {
	return b.G.AddNodeWithConfig(graph.Math{Op: op}, graph.Position{},
		[]graph.InputDef{lhs, rhs},
		[]graph.Port{{Name: "out", Type: out}})
}

// Generic adds a pass-through node with a required input of type typ.
func (b *GraphBuilder) Generic(name string, typ ir.ValueType) graph.NodeID {
	return b.GenericWith(name, graph.Required("in", typ), typ)
}

// GenericWith adds a pass-through node with an explicit input definition.
func (b *GraphBuilder) GenericWith(name string, in graph.InputDef, out ir.ValueType) graph.NodeID {
	return b.G.AddNodeWithConfig(graph.Generic{Name: name}, graph.Position{},
		[]graph.InputDef{in},
		[]graph.Port{{Name: "out", Type: out}})
}

// In returns the named input socket of node.
func (b *GraphBuilder) In(node graph.NodeID, name string) graph.SocketID {
	b.t.Helper()
	id, ok := b.G.SocketByName(node, graph.Input, name)
	require.True(b.t, ok, "node %s has no input %q", node, name)
	return id
}

// Out returns the "out" socket of node.
func (b *GraphBuilder) Out(node graph.NodeID) graph.SocketID {
	b.t.Helper()
	id, ok := b.G.SocketByName(node, graph.Output, "out")
	require.True(b.t, ok, "node %s has no output \"out\"", node)
	return id
}

// Link connects from's output to the named input of to.
func (b *GraphBuilder) Link(from graph.NodeID, to graph.NodeID, input string) graph.LinkID {
	b.t.Helper()
	id, err := b.G.Connect(b.Out(from), b.In(to, input))
	require.NoError(b.t, err)
	return id
}

// Chain links each node's output into the next node's "in" input.
func (b *GraphBuilder) Chain(nodes ...graph.NodeID) {
	b.t.Helper()
	for i := 0; i+1 < len(nodes); i++ {
		b.Link(nodes[i], nodes[i+1], "in")
	}
}
