package graph

import (
	"fmt"

	"github.com/roach88/shadegraph/internal/ir"
)

// Kind is a node's behaviour. The set is closed: Value, Math and Generic.
// Passes switch exhaustively over it and treat anything else as unsupported.
type Kind interface {
	fmt.Stringer
	isKind()
}

// Value produces a constant of a fixed type. It has no inputs and one output.
type Value struct {
	Type ir.ValueType
}

// Math combines exactly two inputs of identical type with an arithmetic operator.
type Math struct {
	Op ir.BinaryOp
}

// Generic passes its single input through unchanged. Name is a user label.
type Generic struct {
	Name string
}

func (Value) isKind()   {}
func (Math) isKind()    {}
func (Generic) isKind() {}

func (k Value) String() string   { return fmt.Sprintf("Value(%s)", k.Type) }
func (k Math) String() string    { return fmt.Sprintf("Math(%s)", k.Op) }
func (k Generic) String() string { return fmt.Sprintf("Generic(%s)", k.Name) }

// kindCanonical renders a kind for content hashing.
func kindCanonical(k Kind) map[string]any {
	switch kind := k.(type) {
	case Value:
		return map[string]any{"kind": "value", "type": kind.Type.String()}
	case Math:
		return map[string]any{"kind": "math", "op": kind.Op.String()}
	case Generic:
		return map[string]any{"kind": "generic", "name": kind.Name}
	default:
		return map[string]any{"kind": fmt.Sprintf("%T", k)}
	}
}
