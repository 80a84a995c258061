package document

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Document error codes (E000-E099), shared with the CLI.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeLoadFailed   = "E004" // file could not be read
	ErrCodeNotFound     = "E005" // path not found
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed
	ErrCodeInvalidNode  = "E010" // malformed node entry
	ErrCodeInvalidType  = "E011" // unknown or missing value type
	ErrCodeInvalidOp    = "E012" // unknown math operator
	ErrCodeUnknownNode  = "E013" // link or root names a missing node
	ErrCodeUnknownPort  = "E014" // link names a missing socket
	ErrCodeInvalidValue = "E015" // default literal does not fit its type
	ErrCodeInvalidLink  = "E016" // graph rejected the link
)

// Error is a problem in a graph document, positioned in the CUE source
// when the position is known.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos
	Err     error // underlying graph error for ErrCodeInvalidLink
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(code string, pos token.Pos, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}
