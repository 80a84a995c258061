package compiler

import "github.com/roach88/shadegraph/internal/ir"

// ValidateIR checks that every instruction only references values defined
// strictly before it. The first violation is returned:
//   - InvalidValueRef when the id lies outside the program
//   - FutureValueRef when it names the instruction itself or a later one
//
// ValidateIR does not modify p.
func ValidateIR(p *ir.Program) error {
	n := p.Len()
	for i := 0; i < n; i++ {
		for _, ref := range p.Insts[i].Refs() {
			switch {
			case ref < 0 || int(ref) >= n:
				return &ValidationError{Kind: InvalidValueRef, Inst: i, Ref: ref}
			case int(ref) >= i:
				return &ValidationError{Kind: FutureValueRef, Inst: i, Ref: ref}
			}
		}
	}
	return nil
}
