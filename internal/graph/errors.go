package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/shadegraph/internal/ir"
)

// Structural error codes (E200-E299).
const (
	ErrCodeNodeNotFound          = "E201"
	ErrCodeSocketNotFound        = "E202"
	ErrCodeWrongDirection        = "E203"
	ErrCodeTypeMismatch          = "E204"
	ErrCodeInputAlreadyConnected = "E205"
	ErrCodeCycleDetected         = "E206"
)

// ErrorKind classifies a structural graph error.
type ErrorKind uint8

const (
	NodeNotFound ErrorKind = iota + 1
	SocketNotFound
	WrongDirection
	TypeMismatch
	InputAlreadyConnected
	CycleDetected
)

func (k ErrorKind) String() string {
	switch k {
	case NodeNotFound:
		return "NodeNotFound"
	case SocketNotFound:
		return "SocketNotFound"
	case WrongDirection:
		return "WrongDirection"
	case TypeMismatch:
		return "TypeMismatch"
	case InputAlreadyConnected:
		return "InputAlreadyConnected"
	case CycleDetected:
		return "CycleDetected"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error is a structural graph error. Only the fields relevant to Kind are set:
//   - NodeNotFound: Node
//   - SocketNotFound, InputAlreadyConnected: Socket
//   - WrongDirection: Socket, Expected, Found
//   - TypeMismatch: Socket (the target), From, To
//   - CycleDetected: Cycles
type Error struct {
	Kind     ErrorKind
	Node     NodeID
	Socket   SocketID
	Expected Direction
	Found    Direction
	From     ir.ValueType
	To       ir.ValueType
	Cycles   [][]NodeID
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNodeNotFound          = &Error{Kind: NodeNotFound}
	ErrSocketNotFound        = &Error{Kind: SocketNotFound}
	ErrWrongDirection        = &Error{Kind: WrongDirection}
	ErrTypeMismatch          = &Error{Kind: TypeMismatch}
	ErrInputAlreadyConnected = &Error{Kind: InputAlreadyConnected}
	ErrCycleDetected         = &Error{Kind: CycleDetected}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case NodeNotFound:
		return fmt.Sprintf("[%s] node %s not found", e.Code(), e.Node)
	case SocketNotFound:
		return fmt.Sprintf("[%s] socket %s not found", e.Code(), e.Socket)
	case WrongDirection:
		return fmt.Sprintf("[%s] socket %s: expected %s socket, found %s", e.Code(), e.Socket, e.Expected, e.Found)
	case TypeMismatch:
		return fmt.Sprintf("[%s] cannot link %s output to %s input %s", e.Code(), e.From, e.To, e.Socket)
	case InputAlreadyConnected:
		return fmt.Sprintf("[%s] input %s already has an incoming link", e.Code(), e.Socket)
	case CycleDetected:
		return fmt.Sprintf("[%s] graph contains %d cycle(s): %s", e.Code(), len(e.Cycles), FormatCycles(e.Cycles))
	default:
		return fmt.Sprintf("graph error %s", e.Kind)
	}
}

// Code returns the stable error code for the kind.
func (e *Error) Code() string {
	switch e.Kind {
	case NodeNotFound:
		return ErrCodeNodeNotFound
	case SocketNotFound:
		return ErrCodeSocketNotFound
	case WrongDirection:
		return ErrCodeWrongDirection
	case TypeMismatch:
		return ErrCodeTypeMismatch
	case InputAlreadyConnected:
		return ErrCodeInputAlreadyConnected
	case CycleDetected:
		return ErrCodeCycleDetected
	default:
		return "E200"
	}
}

// Is reports whether target is a graph error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// FormatCycles renders cycles as "n1 → n2 → n1; n3 → n3".
func FormatCycles(cycles [][]NodeID) string {
	parts := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		if len(cycle) == 0 {
			continue
		}
		ids := make([]string, 0, len(cycle)+1)
		for _, id := range cycle {
			ids = append(ids, id.String())
		}
		ids = append(ids, cycle[0].String())
		parts = append(parts, strings.Join(ids, " → "))
	}
	return strings.Join(parts, "; ")
}
