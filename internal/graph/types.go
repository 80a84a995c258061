package graph

import (
	"slices"

	"github.com/roach88/shadegraph/internal/ir"
)

// Direction tells whether a socket consumes or produces a value.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "Output"
	}
	return "Input"
}

// Position is display metadata for the editor canvas. Compilation ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InputConfig describes how an unconnected input resolves.
// Only meaningful on Input sockets.
type InputConfig struct {
	Optional bool
	Default  *ir.Literal
}

// Node is a vertex of the graph. Inputs and Outputs are ordered socket ids.
type Node struct {
	ID       NodeID
	Kind     Kind
	Inputs   []SocketID
	Outputs  []SocketID
	Position Position
}

// Socket is a typed connection point owned by exactly one node.
type Socket struct {
	ID        SocketID
	Node      NodeID
	Direction Direction
	Type      ir.ValueType
	Name      string
	Config    *InputConfig
}

// IsOptional reports whether an input may stay unconnected.
func (s Socket) IsOptional() bool {
	return s.Config != nil && s.Config.Optional
}

// Default returns the default literal of an optional input, if any.
func (s Socket) Default() (ir.Literal, bool) {
	if s.Config == nil || s.Config.Default == nil {
		return ir.Literal{}, false
	}
	return *s.Config.Default, true
}

// Link connects an Output socket to an Input socket.
type Link struct {
	ID   LinkID
	From SocketID
	To   SocketID
}

// Port declares a socket to create: a name and a type.
type Port struct {
	Name string
	Type ir.ValueType
}

// InputDef declares an input socket together with its resolution rules.
// Build one with Required or Optional.
type InputDef struct {
	Port
	Optional bool
	Default  *ir.Literal
}

// Required declares an input that must be connected.
func Required(name string, t ir.ValueType) InputDef {
	return InputDef{Port: Port{Name: name, Type: t}}
}

// Optional declares an input that falls back to def when unconnected.
func Optional(name string, t ir.ValueType, def ir.Literal) InputDef {
	return InputDef{Port: Port{Name: name, Type: t}, Optional: true, Default: &def}
}

// OptionalNoDefault declares an optional input without a default literal.
// Compiling a graph that leaves it unconnected fails.
func OptionalNoDefault(name string, t ir.ValueType) InputDef {
	return InputDef{Port: Port{Name: name, Type: t}, Optional: true}
}

// clone returns a deep copy so callers can never mutate Store internals.
func (n *Node) clone() Node {
	return Node{
		ID:       n.ID,
		Kind:     n.Kind,
		Inputs:   slices.Clone(n.Inputs),
		Outputs:  slices.Clone(n.Outputs),
		Position: n.Position,
	}
}

func (s *Socket) clone() Socket {
	out := *s
	if s.Config != nil {
		cfg := *s.Config
		if s.Config.Default != nil {
			def := *s.Config.Default
			cfg.Default = &def
		}
		out.Config = &cfg
	}
	return out
}
