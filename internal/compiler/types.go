package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/shadegraph/internal/analysis"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

// TypeMap records the inferred type of every socket of every reachable node.
type TypeMap map[graph.SocketID]ir.ValueType

// Lookup returns the type recorded for socket.
func (m TypeMap) Lookup(socket graph.SocketID) (ir.ValueType, bool) {
	t, ok := m[socket]
	return t, ok
}

// PropagateTypes infers a concrete type for every socket of the reachable
// nodes of view.
//
// Nodes are visited in topological order, so every linked input reads a
// type that was already resolved upstream. Each input resolves as follows:
//   - linked: the type of the source socket
//   - unlinked optional with default: the socket's declared type, provided the
//     default literal has that type or converts to it
//   - unlinked optional without default: OptionalInputMissingDefault
//   - unlinked required: UnconnectedRequiredInput
//
// Per-kind rules then give the node's result type, which every output takes:
//   - Value(t): no inputs, result t
//   - Math: exactly two inputs, result Unify(inputs)
//   - Generic: exactly one input, result unchanged
//
// The result depends only on view, so repeated calls agree.
func PropagateTypes(view *analysis.GraphView) (TypeMap, error) {
	types := make(TypeMap)
	g := view.Graph

	for id := range view.ReachableInOrder() {
		node, ok := g.Node(id)
		if !ok {
			return nil, &graph.Error{Kind: graph.NodeNotFound, Node: id}
		}

		inputs := make([]ir.ValueType, 0, len(node.Inputs))
		for _, sockID := range node.Inputs {
			t, err := resolveInputType(g, types, node.ID, sockID)
			if err != nil {
				return nil, err
			}
			types[sockID] = t
			inputs = append(inputs, t)
		}

		result, err := inferNode(node, inputs)
		if err != nil {
			return nil, err
		}
		for _, out := range node.Outputs {
			types[out] = result
		}
	}
	return types, nil
}

func resolveInputType(g *graph.Store, types TypeMap, node graph.NodeID, sockID graph.SocketID) (ir.ValueType, error) {
	sock, ok := g.Socket(sockID)
	if !ok {
		return 0, &graph.Error{Kind: graph.SocketNotFound, Socket: sockID}
	}

	if link, ok := g.IncomingLink(sockID); ok {
		if t, ok := types[link.From]; ok {
			return t, nil
		}
		return 0, &TypeError{Kind: UnconnectedRequiredInput, Node: node, Socket: sockID}
	}

	if !sock.IsOptional() {
		return 0, &TypeError{Kind: UnconnectedRequiredInput, Node: node, Socket: sockID}
	}
	def, ok := sock.Default()
	if !ok {
		return 0, &TypeError{Kind: OptionalInputMissingDefault, Node: node, Socket: sockID}
	}
	if def.Type() != sock.Type && !CanConvert(def.Type(), sock.Type) {
		return 0, &TypeError{
			Kind:     DefaultLiteralTypeMismatch,
			Node:     node,
			Socket:   sockID,
			Expected: sock.Type,
			Found:    def.Type(),
		}
	}
	return sock.Type, nil
}

func inferNode(node graph.Node, inputs []ir.ValueType) (ir.ValueType, error) {
	switch kind := node.Kind.(type) {
	case graph.Value:
		if len(inputs) != 0 {
			return 0, &TypeError{Kind: ArityMismatch, Node: node.ID, Want: 0, Got: len(inputs)}
		}
		return kind.Type, nil

	case graph.Math:
		if len(inputs) != 2 {
			return 0, &TypeError{Kind: ArityMismatch, Node: node.ID, Want: 2, Got: len(inputs)}
		}
		t, err := Unify(inputs)
		var terr *TypeError
		if errors.As(err, &terr) {
			terr.Node = node.ID
		}
		return t, err

	case graph.Generic:
		if len(inputs) != 1 {
			return 0, &TypeError{Kind: ArityMismatch, Node: node.ID, Want: 1, Got: len(inputs)}
		}
		return inputs[0], nil

	default:
		return 0, fmt.Errorf("node %s: unknown node kind %T", node.ID, node.Kind)
	}
}

// Unify requires every type in types to be identical and returns it.
// There is no promotion: Float and Vec3 do not unify, nor do Vec4 and Color.
func Unify(types []ir.ValueType) (ir.ValueType, error) {
	if len(types) == 0 {
		return 0, &TypeError{Kind: EmptyUnification}
	}
	first := types[0]
	for _, t := range types[1:] {
		if t != first {
			return 0, &TypeError{Kind: Mismatch, Expected: first, Found: t}
		}
	}
	return first, nil
}
