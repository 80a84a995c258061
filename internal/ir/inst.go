package ir

import "fmt"

// ValueID names the result of an instruction by its index in the program.
type ValueID int

func (id ValueID) String() string {
	return fmt.Sprintf("v%d", int(id))
}

// Inst is an IR instruction. The set of implementations is closed:
// Constant, Binary and Convert. Consumers switch exhaustively over them.
type Inst interface {
	// ResultType is the type of the value this instruction defines.
	ResultType() ValueType
	// Refs returns the values this instruction reads, in operand order.
	Refs() []ValueID
	isInst()
}

// Constant materialises a literal.
type Constant struct {
	Value Literal
	Type  ValueType
}

// Binary applies an arithmetic operator to two earlier values.
type Binary struct {
	Op   BinaryOp
	LHS  ValueID
	RHS  ValueID
	Type ValueType
}

// Convert coerces an earlier value from one type to another.
// Only pairs accepted by the conversion table are ever emitted.
type Convert struct {
	From     ValueID
	FromType ValueType
	ToType   ValueType
}

func (c Constant) ResultType() ValueType { return c.Type }
func (b Binary) ResultType() ValueType   { return b.Type }
func (c Convert) ResultType() ValueType  { return c.ToType }

func (Constant) Refs() []ValueID  { return nil }
func (b Binary) Refs() []ValueID  { return []ValueID{b.LHS, b.RHS} }
func (c Convert) Refs() []ValueID { return []ValueID{c.From} }

func (Constant) isInst() {}
func (Binary) isInst()   {}
func (Convert) isInst()  {}

func (c Constant) String() string {
	return fmt.Sprintf("const %s %s", c.Type, c.Value)
}

func (b Binary) String() string {
	return fmt.Sprintf("%s %s %s, %s", b.Op, b.Type, b.LHS, b.RHS)
}

func (c Convert) String() string {
	return fmt.Sprintf("convert %s -> %s %s", c.FromType, c.ToType, c.From)
}
