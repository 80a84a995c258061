package compiler

import "github.com/roach88/shadegraph/internal/ir"

type conversion struct{ from, to ir.ValueType }

// conversions is closed; nothing else coerces.
var conversions = map[conversion]struct{}{
	{ir.Float, ir.Vec2}:  {},
	{ir.Float, ir.Vec3}:  {},
	{ir.Float, ir.Vec4}:  {},
	{ir.Float, ir.Color}: {},
	{ir.Vec3, ir.Color}:  {},
}

// CanConvert reports whether a value of type from may be coerced to to.
// Scalar Float splats into every component; Vec3 becomes Color with alpha 1.
func CanConvert(from, to ir.ValueType) bool {
	_, ok := conversions[conversion{from, to}]
	return ok
}

// InsertConversions rebuilds p with an explicit Convert in front of every
// Binary operand whose type differs from the Binary's result type.
//
// Value ids shift as conversions are inserted, so operands are remapped
// from old to new ids while re-emitting. Convert instructions already in p
// are checked against the conversion table using the operand's actual type.
// An operand that does not name an earlier instruction fails with
// UnresolvedOperand since its type cannot be derived.
func InsertConversions(p *ir.Program) (*ir.Program, error) {
	out, _, err := InsertConversionsWithOrigins(p, nil)
	return out, err
}

// InsertConversionsWithOrigins is InsertConversions that carries origins
// over to the rebuilt program. An inserted Convert takes the origin of the
// Binary it feeds. A nil origins map yields nil.
func InsertConversionsWithOrigins(p *ir.Program, origins Origins) (*ir.Program, Origins, error) {
	out := ir.NewProgram()
	if p == nil {
		return out, nil, nil
	}
	remap := make([]ir.ValueID, 0, p.Len())

	var moved Origins
	if origins != nil {
		moved = make(Origins, len(origins))
	}

	for i, inst := range p.Insts {
		start := out.Len()
		switch inst := inst.(type) {
		case ir.Constant:
			remap = append(remap, out.Append(inst))

		case ir.Binary:
			lhs, err := coerce(out, remap, i, inst.LHS, inst.Type)
			if err != nil {
				return nil, nil, err
			}
			rhs, err := coerce(out, remap, i, inst.RHS, inst.Type)
			if err != nil {
				return nil, nil, err
			}
			remap = append(remap, out.Append(ir.Binary{Op: inst.Op, LHS: lhs, RHS: rhs, Type: inst.Type}))

		case ir.Convert:
			from, fromType, err := operand(out, remap, i, inst.From)
			if err != nil {
				return nil, nil, err
			}
			if !CanConvert(fromType, inst.ToType) {
				return nil, nil, &ConversionError{Kind: NoConversion, Inst: i, From: fromType, To: inst.ToType}
			}
			remap = append(remap, out.Append(ir.Convert{From: from, FromType: fromType, ToType: inst.ToType}))
		}

		if at, ok := origins[ir.ValueID(i)]; ok {
			for v := start; v < out.Len(); v++ {
				moved[ir.ValueID(v)] = at
			}
		}
	}
	return out, moved, nil
}

// operand maps an old value id to the rebuilt program and returns its type.
func operand(out *ir.Program, remap []ir.ValueID, inst int, old ir.ValueID) (ir.ValueID, ir.ValueType, error) {
	if old < 0 || int(old) >= inst {
		return 0, 0, &ConversionError{Kind: UnresolvedOperand, Inst: inst, Value: old}
	}
	id := remap[old]
	t, _ := out.TypeOf(id)
	return id, t, nil
}

// coerce returns the operand as a value of type want, appending a Convert
// when the types differ.
func coerce(out *ir.Program, remap []ir.ValueID, inst int, old ir.ValueID, want ir.ValueType) (ir.ValueID, error) {
	id, t, err := operand(out, remap, inst, old)
	if err != nil {
		return 0, err
	}
	if t == want {
		return id, nil
	}
	if !CanConvert(t, want) {
		return 0, &ConversionError{Kind: NoConversion, Inst: inst, From: t, To: want}
	}
	return out.Append(ir.Convert{From: id, FromType: t, ToType: want}), nil
}
