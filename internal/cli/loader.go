package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/document"
	"github.com/roach88/shadegraph/internal/graph"
)

// Error code constants - unified across all CLI commands. Document codes
// are shared so a parse error reads the same from every command.
const (
	ErrCodeGeneric     = document.ErrCodeGeneric
	ErrCodeLoadFailed  = document.ErrCodeLoadFailed
	ErrCodeNotFound    = document.ErrCodeNotFound
	ErrCodeBuildFailed = document.ErrCodeBuildFailed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStoreFailed = "E008" // Compilation history unavailable
)

// LoadError is a document that could not be turned into a graph.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// loadGraph reads the document at path (a file or a CUE package directory)
// and resolves the roots to compile. Empty rootNames keeps the document's
// own roots.
func loadGraph(path string, rootNames []string) (*document.Document, []graph.NodeID, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, nil, toLoadError(err)
	}
	if len(rootNames) == 0 {
		return doc, doc.Roots, nil
	}
	roots, err := doc.ResolveRoots(rootNames)
	if err != nil {
		return nil, nil, toLoadError(err)
	}
	return doc, roots, nil
}

func toLoadError(err error) *LoadError {
	var docErr *document.Error
	if errors.As(err, &docErr) {
		msg := docErr.Message
		if docErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", docErr.Pos.Filename(), docErr.Pos.Line(), docErr.Pos.Column(), msg)
		}
		return &LoadError{Code: docErr.Code, Message: msg, Err: err}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error(), Err: err}
}

// describeDiagnostic renders a diagnostic with the node's document name in
// place of its id, e.g. `warning[W002] sum: Input "rhs" uses default value 0`.
func describeDiagnostic(doc *document.Document, d diagnostic.Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]", d.Severity, d.Code)
	if d.Node != nil {
		b.WriteString(" ")
		b.WriteString(doc.NodeName(*d.Node))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// DiagnosticView is the JSON form of a diagnostic, naming the node the way
// the document does.
type DiagnosticView struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Node     string `json:"node,omitempty"`
	Socket   string `json:"socket,omitempty"`
}

func diagnosticViews(doc *document.Document, diags []diagnostic.Diagnostic) []DiagnosticView {
	views := make([]DiagnosticView, 0, len(diags))
	for _, d := range diags {
		v := DiagnosticView{Severity: string(d.Severity), Code: d.Code, Message: d.Message}
		if d.Node != nil {
			v.Node = doc.NodeName(*d.Node)
		}
		if d.Socket != nil {
			v.Socket = d.Socket.String()
		}
		views = append(views, v)
	}
	return views
}
