// Package diagnostic translates errors and advisory findings from every
// compilation stage into one uniform record for display.
//
// Translation is stateless and never influences the pipeline: diagnostics
// are a side channel next to the compiled output.
package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/shadegraph/internal/analysis"
	"github.com/roach88/shadegraph/internal/compiler"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
)

// Severity is either "error" or "warning".
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Warning codes (W001-W099).
const (
	CodeUnreachable   = "W001"
	CodeDefaultValue  = "W002"
	CodeConversion    = "W003"
	CodeInternalError = "E000"
)

// Diagnostic is one message for the editor. Node and Socket point at the
// offending entity when there is one.
type Diagnostic struct {
	Severity Severity        `json:"severity"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Node     *graph.NodeID   `json:"node,omitempty"`
	Socket   *graph.SocketID `json:"socket,omitempty"`
}

// String renders the diagnostic on one line, e.g. "warning[W001] n4: Node is unreachable".
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]", d.Severity, d.Code)
	if d.Node != nil {
		fmt.Fprintf(&b, " %s", *d.Node)
	}
	if d.Socket != nil {
		fmt.Fprintf(&b, " %s", *d.Socket)
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func nodeRef(id graph.NodeID) *graph.NodeID {
	if id == 0 {
		return nil
	}
	return &id
}

func socketRef(id graph.SocketID) *graph.SocketID {
	if id == 0 {
		return nil
	}
	return &id
}

// FromError maps an error from any stage to an error diagnostic. Wrapped
// errors are unwrapped; anything unrecognised becomes an internal error
// carrying err's text.
func FromError(err error) Diagnostic {
	var (
		gerr *graph.Error
		terr *compiler.TypeError
		lerr *compiler.LoweringError
		cerr *compiler.ConversionError
		verr *compiler.ValidationError
	)
	switch {
	case errors.As(err, &gerr):
		return fromGraphError(gerr)
	case errors.As(err, &terr):
		return fromTypeError(terr)
	case errors.As(err, &lerr):
		return fromLoweringError(lerr)
	case errors.As(err, &cerr):
		return fromConversionError(cerr)
	case errors.As(err, &verr):
		return Diagnostic{
			Severity: SeverityError,
			Code:     verr.Code(),
			Message:  fmt.Sprintf("Internal compiler error: instruction %d references %s before it is defined", verr.Inst, verr.Ref),
		}
	default:
		return Diagnostic{Severity: SeverityError, Code: CodeInternalError, Message: err.Error()}
	}
}

func fromGraphError(e *graph.Error) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: e.Code(), Node: nodeRef(e.Node), Socket: socketRef(e.Socket)}
	switch e.Kind {
	case graph.NodeNotFound:
		d.Message = "Node does not exist"
	case graph.SocketNotFound:
		d.Message = "Socket does not exist"
	case graph.WrongDirection:
		d.Message = fmt.Sprintf("Expected an %s socket but found an %s socket", strings.ToLower(e.Expected.String()), strings.ToLower(e.Found.String()))
	case graph.TypeMismatch:
		d.Message = fmt.Sprintf("Cannot connect %s to %s", e.From, e.To)
	case graph.InputAlreadyConnected:
		d.Message = "Input already has a connection"
	case graph.CycleDetected:
		d.Message = "Graph contains a cycle: " + graph.FormatCycles(e.Cycles)
		if len(e.Cycles) > 0 && len(e.Cycles[0]) > 0 {
			d.Node = nodeRef(e.Cycles[0][0])
		}
	default:
		d.Message = e.Error()
	}
	return d
}

func fromTypeError(e *compiler.TypeError) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: e.Code(), Node: nodeRef(e.Node), Socket: socketRef(e.Socket)}
	switch e.Kind {
	case compiler.Mismatch:
		d.Message = fmt.Sprintf("Type mismatch: expected %s, found %s", e.Expected, e.Found)
	case compiler.EmptyUnification:
		d.Message = "No input types to unify"
	case compiler.OptionalInputMissingDefault:
		d.Message = "Optional input is not connected and has no default value"
	case compiler.DefaultLiteralTypeMismatch:
		d.Message = fmt.Sprintf("Default value is %s but the input expects %s", e.Found, e.Expected)
	case compiler.UnconnectedRequiredInput:
		d.Message = "Required input is not connected"
	case compiler.ArityMismatch:
		d.Message = fmt.Sprintf("Node expects %d input(s) but has %d", e.Want, e.Got)
	default:
		d.Message = e.Error()
	}
	return d
}

func fromLoweringError(e *compiler.LoweringError) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: e.Code(), Node: nodeRef(e.Node), Socket: socketRef(e.Socket)}
	switch e.Kind {
	case compiler.MissingInput:
		d.Message = "Input has no value"
	case compiler.MissingType:
		d.Message = "Output type could not be inferred"
	case compiler.UnsupportedNode:
		d.Message = "Unsupported node: " + e.Reason
	case compiler.LoweringOptionalMissingDefault:
		d.Message = "Optional input is not connected and has no default value"
	default:
		d.Message = e.Error()
	}
	return d
}

func fromConversionError(e *compiler.ConversionError) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: e.Code()}
	switch e.Kind {
	case compiler.NoConversion:
		d.Message = fmt.Sprintf("No implicit conversion from %s to %s", e.From, e.To)
	default:
		d.Message = strings.TrimPrefix(e.Error(), "["+e.Code()+"] ")
	}
	return d
}

// Unreachable warns about every node that does not feed a root.
func Unreachable(view *analysis.GraphView) []Diagnostic {
	var out []Diagnostic
	for _, id := range view.Unreachable() {
		out = append(out, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeUnreachable,
			Message:  "Node is unreachable",
			Node:     nodeRef(id),
		})
	}
	return out
}

// Defaults reports every reachable input that resolves from its default
// literal because nothing is connected to it.
func Defaults(view *analysis.GraphView) []Diagnostic {
	var out []Diagnostic
	g := view.Graph
	for id := range view.ReachableInOrder() {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		for _, sockID := range node.Inputs {
			if _, linked := g.IncomingLink(sockID); linked {
				continue
			}
			sock, ok := g.Socket(sockID)
			if !ok || !sock.IsOptional() {
				continue
			}
			def, ok := sock.Default()
			if !ok {
				continue
			}
			out = append(out, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeDefaultValue,
				Message:  fmt.Sprintf("Input %q uses default value %s", sock.Name, def),
				Node:     nodeRef(id),
				Socket:   socketRef(sockID),
			})
		}
	}
	return out
}

// Conversions reports every Convert instruction of p, located at the node
// and socket origins names for it. origins may be nil.
func Conversions(p *ir.Program, origins compiler.Origins) []Diagnostic {
	var out []Diagnostic
	for i := 0; i < p.Len(); i++ {
		c, ok := p.Insts[i].(ir.Convert)
		if !ok {
			continue
		}
		d := Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeConversion,
			Message:  fmt.Sprintf("Implicit conversion from %s to %s (%s)", c.FromType, c.ToType, ir.ValueID(i)),
		}
		if at, ok := origins[ir.ValueID(i)]; ok {
			d.Node = nodeRef(at.Node)
			d.Socket = socketRef(at.Socket)
		}
		out = append(out, d)
	}
	return out
}
