package compiler

import (
	"fmt"

	"github.com/roach88/shadegraph/internal/analysis"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

// LowerToIR flattens the reachable part of view into an IR program.
//
// Nodes are lowered in topological order. Each emitted instruction takes the
// next ValueID; a socket map records which value each output socket carries.
//   - Value(t) emits a Constant holding the zero literal of t
//   - Math(op) resolves both inputs and emits one Binary typed by the TypeMap
//   - Generic aliases its output to its resolved input and emits nothing
//
// An unlinked optional input becomes a Constant of its default literal,
// typed by the literal itself. When the literal's type differs from the
// socket's, a Convert to the socket type follows it, so every value agrees
// with the TypeMap whether a Binary or a Generic consumes it.
func LowerToIR(view *analysis.GraphView, types TypeMap) (*ir.Program, error) {
	p, _, err := LowerWithOrigins(view, types)
	return p, err
}

// Origin locates the graph entity an instruction was lowered from. Socket is
// zero unless the value stands in for an unlinked input.
type Origin struct {
	Node   graph.NodeID
	Socket graph.SocketID
}

// Origins maps the values of a program to their origin.
type Origins map[ir.ValueID]Origin

// LowerWithOrigins is LowerToIR that also reports where each instruction
// came from.
func LowerWithOrigins(view *analysis.GraphView, types TypeMap) (*ir.Program, Origins, error) {
	l := &lowerer{
		g:       view.Graph,
		types:   types,
		prog:    ir.NewProgram(),
		values:  make(map[graph.SocketID]ir.ValueID),
		origins: make(Origins),
	}

	for id := range view.ReachableInOrder() {
		node, ok := l.g.Node(id)
		if !ok {
			return nil, nil, &graph.Error{Kind: graph.NodeNotFound, Node: id}
		}
		if err := l.lowerNode(node); err != nil {
			return nil, nil, err
		}
	}
	return l.prog, l.origins, nil
}

type lowerer struct {
	g       *graph.Store
	types   TypeMap
	prog    *ir.Program
	values  map[graph.SocketID]ir.ValueID
	origins Origins
}

func (l *lowerer) emit(inst ir.Inst, at Origin) ir.ValueID {
	v := l.prog.Append(inst)
	l.origins[v] = at
	return v
}

func (l *lowerer) lowerNode(node graph.Node) error {
	switch kind := node.Kind.(type) {
	case graph.Value:
		if len(node.Inputs) != 0 || len(node.Outputs) != 1 {
			return unsupported(node, "value nodes take no inputs and have one output")
		}
		l.values[node.Outputs[0]] = l.emit(ir.Constant{Value: ir.ZeroLiteral(kind.Type), Type: kind.Type}, Origin{Node: node.ID})
		return nil

	case graph.Math:
		if len(node.Inputs) != 2 || len(node.Outputs) == 0 {
			return unsupported(node, "math nodes take two inputs and have an output")
		}
		operands := make([]ir.ValueID, 0, 2)
		for _, in := range node.Inputs {
			v, err := l.resolveInput(node.ID, in)
			if err != nil {
				return err
			}
			operands = append(operands, v)
		}

		out := node.Outputs[0]
		t, ok := l.types.Lookup(out)
		if !ok {
			return &LoweringError{Kind: MissingType, Node: node.ID, Socket: out}
		}
		v := l.emit(ir.Binary{Op: kind.Op, LHS: operands[0], RHS: operands[1], Type: t}, Origin{Node: node.ID})
		for _, o := range node.Outputs {
			l.values[o] = v
		}
		return nil

	case graph.Generic:
		if len(node.Inputs) != 1 || len(node.Outputs) != 1 {
			return unsupported(node, "generic nodes take one input and have one output")
		}
		v, err := l.resolveInput(node.ID, node.Inputs[0])
		if err != nil {
			return err
		}
		l.values[node.Outputs[0]] = v
		return nil

	default:
		return unsupported(node, fmt.Sprintf("unknown node kind %T", node.Kind))
	}
}

// resolveInput returns the value feeding an input socket. A linked input
// whose source already carries a value resolves to it. Otherwise an optional
// input emits a Constant from its default, converted to the socket type when
// the two differ, and anything else is MissingInput.
func (l *lowerer) resolveInput(node graph.NodeID, socket graph.SocketID) (ir.ValueID, error) {
	if link, ok := l.g.IncomingLink(socket); ok {
		if v, ok := l.values[link.From]; ok {
			return v, nil
		}
	}

	sock, ok := l.g.Socket(socket)
	if !ok || !sock.IsOptional() {
		return 0, &LoweringError{Kind: MissingInput, Node: node, Socket: socket}
	}
	def, ok := sock.Default()
	if !ok {
		return 0, &LoweringError{Kind: LoweringOptionalMissingDefault, Node: node, Socket: socket}
	}

	at := Origin{Node: node, Socket: socket}
	c := l.emit(ir.Constant{Value: def, Type: def.Type()}, at)
	if def.Type() == sock.Type {
		return c, nil
	}
	return l.emit(ir.Convert{From: c, FromType: def.Type(), ToType: sock.Type}, at), nil
}

func unsupported(node graph.Node, reason string) error {
	return &LoweringError{Kind: UnsupportedNode, Node: node.ID, Reason: reason}
}
