package ir

import (
	"fmt"
	"strings"
)

// Program is an ordered, append-only sequence of instructions.
// ValueID(i) denotes the result of Insts[i].
type Program struct {
	Insts []Inst
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Append adds an instruction and returns the value it defines.
func (p *Program) Append(inst Inst) ValueID {
	p.Insts = append(p.Insts, inst)
	return ValueID(len(p.Insts) - 1)
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Insts)
}

// Has reports whether id is within the program's bounds.
func (p *Program) Has(id ValueID) bool {
	return id >= 0 && int(id) < p.Len()
}

// TypeOf returns the result type of the instruction defining id.
func (p *Program) TypeOf(id ValueID) (ValueType, bool) {
	if !p.Has(id) {
		return 0, false
	}
	return p.Insts[id].ResultType(), true
}

// Last returns the id of the final instruction; ok is false for an empty program.
func (p *Program) Last() (ValueID, bool) {
	if p.Len() == 0 {
		return 0, false
	}
	return ValueID(len(p.Insts) - 1), true
}

// CountConverts returns how many Convert instructions the program holds.
func (p *Program) CountConverts() int {
	n := 0
	for _, inst := range p.Insts {
		if _, ok := inst.(Convert); ok {
			n++
		}
	}
	return n
}

// String renders a human-readable listing, one instruction per line:
//
//	v0 = const Float 0
//	v1 = Add Float v0, v0
func (p *Program) String() string {
	var b strings.Builder
	for i, inst := range p.Insts {
		fmt.Fprintf(&b, "%s = %s\n", ValueID(i), inst)
	}
	return b.String()
}

// canonical converts the program into float-free maps and slices for hashing.
func (p *Program) canonical() map[string]any {
	insts := make([]any, len(p.Insts))
	for i, inst := range p.Insts {
		switch in := inst.(type) {
		case Constant:
			insts[i] = map[string]any{
				"op":    "constant",
				"type":  in.Type.String(),
				"value": in.Value.CanonicalValue(),
			}
		case Binary:
			insts[i] = map[string]any{
				"op":   "binary",
				"kind": in.Op.String(),
				"lhs":  int64(in.LHS),
				"rhs":  int64(in.RHS),
				"type": in.Type.String(),
			}
		case Convert:
			insts[i] = map[string]any{
				"op":        "convert",
				"from":      int64(in.From),
				"from_type": in.FromType.String(),
				"to_type":   in.ToType.String(),
			}
		}
	}
	return map[string]any{
		"ir_version": IRVersion,
		"insts":      insts,
	}
}

// MarshalCanonical returns the RFC 8785 canonical JSON encoding of the program.
func (p *Program) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(p.canonical())
}
