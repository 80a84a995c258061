// Package compiler holds the passes that turn an analysed graph into a
// validated IR program:
//
//	PropagateTypes    GraphView → TypeMap
//	LowerToIR         GraphView + TypeMap → Program
//	InsertConversions Program → Program with explicit Convert instructions
//	ValidateIR        Program → error
//
// Every pass is a pure function. Failures are typed errors (TypeError,
// LoweringError, ConversionError, ValidationError) carrying a stable code;
// no pass panics on a structurally valid but semantically wrong graph.
package compiler
