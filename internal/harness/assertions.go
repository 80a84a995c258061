package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/shadegraph/internal/diagnostic"
)

// AssertionError is returned when an assertion fails.
// It includes the run's diagnostics to help debug the failure.
type AssertionError struct {
	Type        string // Assertion type for categorization
	Expected    string // Human-readable expected outcome
	Actual      string // Human-readable actual outcome
	Diagnostics []diagnostic.Diagnostic
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Diagnostics) > 0 {
		fmt.Fprintf(&buf, "\nDiagnostics:\n")
		for i, d := range e.Diagnostics {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, d)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// messages of those that failed, in order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(r *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Diagnostics: r.Diagnostics}
	}

	switch a.Type {
	case AssertStatus:
		if r.Status != a.Status {
			return fail("status "+a.Status, "status "+r.Status)
		}

	case AssertInstructionCount:
		if got := r.instructionCount(); got != a.Count {
			return fail(fmt.Sprintf("%d instruction(s)", a.Count), fmt.Sprintf("%d instruction(s)", got))
		}

	case AssertConvertCount:
		if got := r.convertCount(); got != a.Count {
			return fail(fmt.Sprintf("%d conversion(s)", a.Count), fmt.Sprintf("%d conversion(s)", got))
		}

	case AssertWGSLContains:
		if !strings.Contains(r.WGSL, a.Text) {
			return fail(fmt.Sprintf("WGSL containing %q", a.Text), fmt.Sprintf("WGSL:\n%s", r.WGSL))
		}

	case AssertIRContains:
		if !strings.Contains(r.IR, a.Text) {
			return fail(fmt.Sprintf("IR containing %q", a.Text), fmt.Sprintf("IR:\n%s", r.IR))
		}

	case AssertErrorCode:
		code, ok := r.errorCode()
		if !ok {
			return fail("failure with "+a.Code, "compilation succeeded")
		}
		if code != a.Code {
			return fail("failure with "+a.Code, "failure with "+code)
		}

	case AssertDiagnostic:
		if !r.hasDiagnostic(a) {
			want := a.Code
			if a.Severity != "" {
				want = a.Severity + " " + want
			}
			if a.Node != "" {
				want += " on node " + a.Node
			}
			return fail("diagnostic "+want, fmt.Sprintf("%d diagnostic(s), none matching", len(r.Diagnostics)))
		}

	case AssertDiagnosticCount:
		n := 0
		for _, d := range r.Diagnostics {
			if a.Severity == "" || string(d.Severity) == a.Severity {
				n++
			}
		}
		if n != a.Count {
			kind := "diagnostic(s)"
			if a.Severity != "" {
				kind = a.Severity + "(s)"
			}
			return fail(fmt.Sprintf("%d %s", a.Count, kind), fmt.Sprintf("%d %s", n, kind))
		}

	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func (r *Result) instructionCount() int {
	if r.Compile == nil {
		return 0
	}
	return r.Compile.Program.Len()
}

func (r *Result) convertCount() int {
	if r.Compile == nil || r.Compile.Program == nil {
		return 0
	}
	return r.Compile.Program.CountConverts()
}

// errorCode returns the code of the error diagnostic of a failed run.
func (r *Result) errorCode() (string, bool) {
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostic.SeverityError {
			return d.Code, true
		}
	}
	return "", false
}

func (r *Result) hasDiagnostic(a Assertion) bool {
	for _, d := range r.Diagnostics {
		if d.Code != a.Code {
			continue
		}
		if a.Severity != "" && string(d.Severity) != a.Severity {
			continue
		}
		if a.Node != "" {
			if d.Node == nil || r.Document == nil {
				continue
			}
			if r.Document.NodeName(*d.Node) != a.Node {
				continue
			}
		}
		return true
	}
	return false
}
