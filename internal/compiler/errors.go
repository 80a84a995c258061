package compiler

import (
	"fmt"

	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

// Type errors (E300-E399)
const (
	ErrCodeTypeMismatch             = "E301" // unification found differing types
	ErrCodeEmptyUnification         = "E302" // nothing to unify
	ErrCodeOptionalMissingDefault   = "E303" // unlinked optional input without default
	ErrCodeDefaultLiteralMismatch   = "E304" // default literal cannot serve the socket type
	ErrCodeUnconnectedRequiredInput = "E305" // required input has no link
	ErrCodeArityMismatch            = "E306" // wrong number of inputs for the node kind
)

// Lowering errors (E400-E499)
const (
	ErrCodeMissingInput                   = "E401"
	ErrCodeMissingType                    = "E402"
	ErrCodeUnsupportedNode                = "E403"
	ErrCodeLoweringOptionalMissingDefault = "E404"
)

// Conversion errors (E500-E599)
const (
	ErrCodeNoConversion      = "E501"
	ErrCodeUnresolvedOperand = "E502"
)

// IR validation errors (E600-E699)
const (
	ErrCodeInvalidValueRef = "E601"
	ErrCodeFutureValueRef  = "E602"
)

// TypeErrorKind classifies a TypeError.
type TypeErrorKind uint8

const (
	Mismatch TypeErrorKind = iota + 1
	EmptyUnification
	OptionalInputMissingDefault
	DefaultLiteralTypeMismatch
	UnconnectedRequiredInput
	ArityMismatch
)

func (k TypeErrorKind) String() string {
	switch k {
	case Mismatch:
		return "Mismatch"
	case EmptyUnification:
		return "EmptyUnification"
	case OptionalInputMissingDefault:
		return "OptionalInputMissingDefault"
	case DefaultLiteralTypeMismatch:
		return "DefaultLiteralTypeMismatch"
	case UnconnectedRequiredInput:
		return "UnconnectedRequiredInput"
	case ArityMismatch:
		return "ArityMismatch"
	default:
		return fmt.Sprintf("TypeErrorKind(%d)", uint8(k))
	}
}

// TypeError is returned by PropagateTypes and Unify.
//
// Node is zero when the error comes from Unify called on its own.
// Socket is set for input-resolution errors. Expected and Found are set for
// Mismatch and DefaultLiteralTypeMismatch; Want and Got for ArityMismatch.
type TypeError struct {
	Kind     TypeErrorKind
	Node     graph.NodeID
	Socket   graph.SocketID
	Expected ir.ValueType
	Found    ir.ValueType
	Want     int
	Got      int
}

func (e *TypeError) Error() string {
	var msg string
	switch e.Kind {
	case Mismatch:
		msg = fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
	case EmptyUnification:
		msg = "cannot unify an empty set of types"
	case OptionalInputMissingDefault:
		msg = fmt.Sprintf("optional input %s is unconnected and has no default", e.Socket)
	case DefaultLiteralTypeMismatch:
		msg = fmt.Sprintf("default literal of input %s is %s, socket expects %s", e.Socket, e.Found, e.Expected)
	case UnconnectedRequiredInput:
		msg = fmt.Sprintf("required input %s is not connected", e.Socket)
	case ArityMismatch:
		msg = fmt.Sprintf("expected %d input(s), found %d", e.Want, e.Got)
	default:
		msg = e.Kind.String()
	}
	if e.Node != 0 {
		return fmt.Sprintf("[%s] node %s: %s", e.Code(), e.Node, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code(), msg)
}

// Code returns the stable error code.
func (e *TypeError) Code() string {
	switch e.Kind {
	case Mismatch:
		return ErrCodeTypeMismatch
	case EmptyUnification:
		return ErrCodeEmptyUnification
	case OptionalInputMissingDefault:
		return ErrCodeOptionalMissingDefault
	case DefaultLiteralTypeMismatch:
		return ErrCodeDefaultLiteralMismatch
	case UnconnectedRequiredInput:
		return ErrCodeUnconnectedRequiredInput
	case ArityMismatch:
		return ErrCodeArityMismatch
	default:
		return "E300"
	}
}

// Is matches another *TypeError of the same kind.
func (e *TypeError) Is(target error) bool {
	t, ok := target.(*TypeError)
	return ok && t.Kind == e.Kind
}

// LoweringErrorKind classifies a LoweringError.
type LoweringErrorKind uint8

const (
	MissingInput LoweringErrorKind = iota + 1
	MissingType
	UnsupportedNode
	LoweringOptionalMissingDefault
)

func (k LoweringErrorKind) String() string {
	switch k {
	case MissingInput:
		return "MissingInput"
	case MissingType:
		return "MissingType"
	case UnsupportedNode:
		return "UnsupportedNode"
	case LoweringOptionalMissingDefault:
		return "OptionalInputMissingDefault"
	default:
		return fmt.Sprintf("LoweringErrorKind(%d)", uint8(k))
	}
}

// LoweringError is returned by LowerToIR.
type LoweringError struct {
	Kind   LoweringErrorKind
	Node   graph.NodeID
	Socket graph.SocketID
	Reason string // UnsupportedNode only
}

func (e *LoweringError) Error() string {
	switch e.Kind {
	case MissingInput:
		return fmt.Sprintf("[%s] node %s: input %s has no value", e.Code(), e.Node, e.Socket)
	case MissingType:
		return fmt.Sprintf("[%s] node %s: no type recorded for socket %s", e.Code(), e.Node, e.Socket)
	case UnsupportedNode:
		return fmt.Sprintf("[%s] node %s: unsupported node: %s", e.Code(), e.Node, e.Reason)
	case LoweringOptionalMissingDefault:
		return fmt.Sprintf("[%s] node %s: optional input %s has no default", e.Code(), e.Node, e.Socket)
	default:
		return fmt.Sprintf("[%s] node %s: %s", e.Code(), e.Node, e.Kind)
	}
}

// Code returns the stable error code.
func (e *LoweringError) Code() string {
	switch e.Kind {
	case MissingInput:
		return ErrCodeMissingInput
	case MissingType:
		return ErrCodeMissingType
	case UnsupportedNode:
		return ErrCodeUnsupportedNode
	case LoweringOptionalMissingDefault:
		return ErrCodeLoweringOptionalMissingDefault
	default:
		return "E400"
	}
}

// Is matches another *LoweringError of the same kind.
func (e *LoweringError) Is(target error) bool {
	t, ok := target.(*LoweringError)
	return ok && t.Kind == e.Kind
}

// ConversionErrorKind classifies a ConversionError.
type ConversionErrorKind uint8

const (
	NoConversion ConversionErrorKind = iota + 1
	UnresolvedOperand
)

func (k ConversionErrorKind) String() string {
	switch k {
	case NoConversion:
		return "NoConversion"
	case UnresolvedOperand:
		return "UnresolvedOperand"
	default:
		return fmt.Sprintf("ConversionErrorKind(%d)", uint8(k))
	}
}

// ConversionError is returned by InsertConversions. Inst is the index of the
// offending instruction in the input program.
type ConversionError struct {
	Kind  ConversionErrorKind
	Inst  int
	From  ir.ValueType
	To    ir.ValueType
	Value ir.ValueID // UnresolvedOperand only
}

func (e *ConversionError) Error() string {
	switch e.Kind {
	case NoConversion:
		return fmt.Sprintf("[%s] instruction %d: no conversion from %s to %s", e.Code(), e.Inst, e.From, e.To)
	case UnresolvedOperand:
		return fmt.Sprintf("[%s] instruction %d: operand %s is not defined before use", e.Code(), e.Inst, e.Value)
	default:
		return fmt.Sprintf("[%s] instruction %d: %s", e.Code(), e.Inst, e.Kind)
	}
}

// Code returns the stable error code.
func (e *ConversionError) Code() string {
	switch e.Kind {
	case NoConversion:
		return ErrCodeNoConversion
	case UnresolvedOperand:
		return ErrCodeUnresolvedOperand
	default:
		return "E500"
	}
}

// Is matches another *ConversionError of the same kind.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	return ok && t.Kind == e.Kind
}

// ValidationErrorKind classifies a ValidationError.
type ValidationErrorKind uint8

const (
	InvalidValueRef ValidationErrorKind = iota + 1
	FutureValueRef
)

func (k ValidationErrorKind) String() string {
	switch k {
	case InvalidValueRef:
		return "InvalidValueRef"
	case FutureValueRef:
		return "FutureValueRef"
	default:
		return fmt.Sprintf("ValidationErrorKind(%d)", uint8(k))
	}
}

// ValidationError is returned by ValidateIR.
type ValidationError struct {
	Kind ValidationErrorKind
	Inst int
	Ref  ir.ValueID
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case InvalidValueRef:
		return fmt.Sprintf("[%s] instruction %d references %s, which is out of bounds", e.Code(), e.Inst, e.Ref)
	case FutureValueRef:
		return fmt.Sprintf("[%s] instruction %d references %s, which is not defined before it", e.Code(), e.Inst, e.Ref)
	default:
		return fmt.Sprintf("[%s] instruction %d: %s", e.Code(), e.Inst, e.Kind)
	}
}

// Code returns the stable error code.
func (e *ValidationError) Code() string {
	switch e.Kind {
	case InvalidValueRef:
		return ErrCodeInvalidValueRef
	case FutureValueRef:
		return ErrCodeFutureValueRef
	default:
		return "E600"
	}
}

// Is matches another *ValidationError of the same kind.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}
