package document

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

func (d *Document) addNodes(nodes cue.Value) error {
	if !nodes.Exists() {
		return nil
	}
	iter, err := nodes.Fields()
	if err != nil {
		return errorf(ErrCodeInvalidNode, nodes.Pos(), "nodes must be a struct: %v", err)
	}

	for iter.Next() {
		name := iter.Label()
		shape, err := parseNode(name, iter.Value())
		if err != nil {
			return err
		}
		id := d.Graph.AddNodeWithConfig(shape.kind, shape.pos, shape.inputs, shape.outputs)
		d.ids[name] = id
		d.names[id] = name
		d.order = append(d.order, name)
	}
	return nil
}

type nodeShape struct {
	kind    graph.Kind
	pos     graph.Position
	inputs  []graph.InputDef
	outputs []graph.Port
}

func parseNode(name string, v cue.Value) (*nodeShape, error) {
	kindName, err := stringField(v, "kind")
	if err != nil {
		return nil, err
	}
	if kindName == "" {
		return nil, errorf(ErrCodeInvalidNode, v.Pos(), "node %q: kind is required", name)
	}

	nodeType, hasType, err := typeField(v, "type")
	if err != nil {
		return nil, err
	}

	shape := &nodeShape{}
	if shape.pos, err = parsePosition(v); err != nil {
		return nil, err
	}

	var defaultInputs []string
	switch kindName {
	case "value":
		if !hasType {
			return nil, errorf(ErrCodeInvalidType, v.Pos(), "node %q: value nodes need a type", name)
		}
		shape.kind = graph.Value{Type: nodeType}

	case "math":
		opName, err := stringField(v, "op")
		if err != nil {
			return nil, err
		}
		op, err := ir.ParseBinaryOp(opName)
		if err != nil {
			return nil, errorf(ErrCodeInvalidOp, v.LookupPath(cue.ParsePath("op")).Pos(), "node %q: %v", name, err)
		}
		shape.kind = graph.Math{Op: op}
		defaultInputs = []string{"lhs", "rhs"}

	case "generic":
		label, err := stringField(v, "name")
		if err != nil {
			return nil, err
		}
		if label == "" {
			label = name
		}
		shape.kind = graph.Generic{Name: label}
		defaultInputs = []string{"in"}

	default:
		return nil, errorf(ErrCodeInvalidNode, v.Pos(), "node %q: unknown kind %q (want value, math or generic)", name, kindName)
	}

	if shape.inputs, err = parseInputs(name, v, defaultInputs, nodeType, hasType); err != nil {
		return nil, err
	}
	if shape.outputs, err = parseOutputs(name, v, nodeType, hasType); err != nil {
		return nil, err
	}
	return shape, nil
}

func parseInputs(node string, v cue.Value, defaults []string, nodeType ir.ValueType, hasType bool) ([]graph.InputDef, error) {
	list := v.LookupPath(cue.ParsePath("inputs"))
	if !list.Exists() {
		if len(defaults) > 0 && !hasType {
			return nil, errorf(ErrCodeInvalidType, v.Pos(), "node %q: type is required unless inputs and outputs are listed", node)
		}
		defs := make([]graph.InputDef, len(defaults))
		for i, name := range defaults {
			defs[i] = graph.Required(name, nodeType)
		}
		return defs, nil
	}

	iter, err := list.List()
	if err != nil {
		return nil, errorf(ErrCodeInvalidNode, list.Pos(), "node %q: inputs must be a list: %v", node, err)
	}
	var defs []graph.InputDef
	for iter.Next() {
		def, err := parseInput(node, iter.Value(), nodeType, hasType)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func parseInput(node string, v cue.Value, nodeType ir.ValueType, hasType bool) (graph.InputDef, error) {
	port, err := parsePort(node, v, nodeType, hasType)
	if err != nil {
		return graph.InputDef{}, err
	}
	def := graph.InputDef{Port: port}

	if opt := v.LookupPath(cue.ParsePath("optional")); opt.Exists() {
		b, err := opt.Bool()
		if err != nil {
			return graph.InputDef{}, errorf(ErrCodeInvalidNode, opt.Pos(), "node %q input %q: optional must be a bool", node, port.Name)
		}
		def.Optional = b
	}

	dv := v.LookupPath(cue.ParsePath("default"))
	if !dv.Exists() {
		return def, nil
	}
	litType := port.Type
	if t, ok, err := typeField(v, "default_type"); err != nil {
		return graph.InputDef{}, err
	} else if ok {
		litType = t
	}
	lit, err := parseLiteral(dv, litType)
	if err != nil {
		return graph.InputDef{}, errorf(ErrCodeInvalidValue, dv.Pos(), "node %q input %q: %v", node, port.Name, err)
	}
	def.Optional = true
	def.Default = &lit
	return def, nil
}

func parseOutputs(node string, v cue.Value, nodeType ir.ValueType, hasType bool) ([]graph.Port, error) {
	list := v.LookupPath(cue.ParsePath("outputs"))
	if !list.Exists() {
		if !hasType {
			return nil, errorf(ErrCodeInvalidType, v.Pos(), "node %q: type is required unless inputs and outputs are listed", node)
		}
		return []graph.Port{{Name: "out", Type: nodeType}}, nil
	}

	iter, err := list.List()
	if err != nil {
		return nil, errorf(ErrCodeInvalidNode, list.Pos(), "node %q: outputs must be a list: %v", node, err)
	}
	var ports []graph.Port
	for iter.Next() {
		p, err := parsePort(node, iter.Value(), nodeType, hasType)
		if err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, nil
}

func parsePort(node string, v cue.Value, nodeType ir.ValueType, hasType bool) (graph.Port, error) {
	name, err := stringField(v, "name")
	if err != nil {
		return graph.Port{}, err
	}
	if name == "" {
		return graph.Port{}, errorf(ErrCodeInvalidNode, v.Pos(), "node %q: socket name is required", node)
	}
	t, ok, err := typeField(v, "type")
	if err != nil {
		return graph.Port{}, err
	}
	if !ok {
		if !hasType {
			return graph.Port{}, errorf(ErrCodeInvalidType, v.Pos(), "node %q socket %q: type is required", node, name)
		}
		t = nodeType
	}
	return graph.Port{Name: name, Type: t}, nil
}

func parsePosition(v cue.Value) (graph.Position, error) {
	pv := v.LookupPath(cue.ParsePath("position"))
	if !pv.Exists() {
		return graph.Position{}, nil
	}
	var pos graph.Position
	if err := pv.Decode(&pos); err != nil {
		return graph.Position{}, errorf(ErrCodeInvalidNode, pv.Pos(), "position must be {x, y}: %v", err)
	}
	return pos, nil
}

// parseLiteral reads a literal of type t: a bool, an integer, a number, or
// a list of numbers with one entry per vector component.
func parseLiteral(v cue.Value, t ir.ValueType) (ir.Literal, error) {
	switch t {
	case ir.Bool:
		b, err := v.Bool()
		if err != nil {
			return ir.Literal{}, fmt.Errorf("Bool default must be true or false")
		}
		return ir.BoolLit(b), nil

	case ir.Int:
		i, err := v.Int64()
		if err != nil {
			return ir.Literal{}, fmt.Errorf("Int default must be an integer")
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return ir.Literal{}, fmt.Errorf("Int default %d overflows 32 bits", i)
		}
		return ir.IntLit(int32(i)), nil

	case ir.Float:
		f, err := v.Float64()
		if err != nil {
			return ir.Literal{}, fmt.Errorf("Float default must be a number")
		}
		return ir.FloatLit(float32(f)), nil
	}

	iter, err := v.List()
	if err != nil {
		return ir.Literal{}, fmt.Errorf("%s default must be a list of %d numbers", t, t.Components())
	}
	var comps []float32
	for iter.Next() {
		f, err := iter.Value().Float64()
		if err != nil {
			return ir.Literal{}, fmt.Errorf("%s default components must be numbers", t)
		}
		comps = append(comps, float32(f))
	}
	return ir.LiteralFromComponents(t, comps)
}

func stringField(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", errorf(ErrCodeInvalidNode, fv.Pos(), "%s must be a string", field)
	}
	return s, nil
}

func typeField(v cue.Value, field string) (ir.ValueType, bool, error) {
	s, err := stringField(v, field)
	if err != nil || s == "" {
		return 0, false, err
	}
	t, err := ir.ParseValueType(s)
	if err != nil {
		return 0, false, errorf(ErrCodeInvalidType, v.LookupPath(cue.ParsePath(field)).Pos(), "%v", err)
	}
	return t, true, nil
}

func (d *Document) addLinks(links cue.Value) error {
	if !links.Exists() {
		return nil
	}
	iter, err := links.List()
	if err != nil {
		return errorf(ErrCodeInvalidLink, links.Pos(), "links must be a list: %v", err)
	}

	for iter.Next() {
		lv := iter.Value()
		from, err := stringField(lv, "from")
		if err != nil {
			return err
		}
		to, err := stringField(lv, "to")
		if err != nil {
			return err
		}

		src, err := d.socketRef(lv, from, graph.Output)
		if err != nil {
			return err
		}
		dst, err := d.socketRef(lv, to, graph.Input)
		if err != nil {
			return err
		}

		if _, err := d.Graph.Connect(src, dst); err != nil {
			var gerr *graph.Error
			code := ErrCodeGeneric
			if errors.As(err, &gerr) {
				code = ErrCodeInvalidLink
			}
			return &Error{
				Code:    code,
				Message: fmt.Sprintf("link %s -> %s: %v", from, to, err),
				Pos:     lv.Pos(),
				Err:     err,
			}
		}
	}
	return nil
}

// socketRef resolves "node.socket". An output reference may omit the
// socket and means "out".
func (d *Document) socketRef(v cue.Value, ref string, dir graph.Direction) (graph.SocketID, error) {
	nodeName, sockName, hasSocket := strings.Cut(ref, ".")
	if !hasSocket {
		if dir == graph.Input {
			return 0, errorf(ErrCodeUnknownPort, v.Pos(), "link target %q must name an input as node.socket", ref)
		}
		sockName = "out"
	}

	id, ok := d.ids[nodeName]
	if !ok {
		return 0, errorf(ErrCodeUnknownNode, v.Pos(), "link references unknown node %q", nodeName)
	}
	sock, ok := d.Graph.SocketByName(id, dir, sockName)
	if !ok {
		return 0, errorf(ErrCodeUnknownPort, v.Pos(), "node %q has no %s socket %q", nodeName, strings.ToLower(dir.String()), sockName)
	}
	return sock, nil
}
