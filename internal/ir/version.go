package ir

// Version constants for the IR schema and compiler.
const (
	// IRVersion is the IR schema version recorded with every stored compilation.
	IRVersion = "1"

	// CompilerVersion is the shadegraph compiler version.
	CompilerVersion = "0.1.0"
)
