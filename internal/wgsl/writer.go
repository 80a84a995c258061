package wgsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/shadegraph/internal/ir"
)

const indent = "    "

// Emit renders p as WGSL. The function's return type is the type of the last
// instruction. An empty program renders as a function without a body.
//
// Emit assumes p passed compiler.ValidateIR; references are not re-checked.
func Emit(p *ir.Program) string {
	w := &writer{prog: p}
	w.writeProgram()
	return w.out.String()
}

type writer struct {
	prog *ir.Program
	out  strings.Builder
}

func (w *writer) writeProgram() {
	last, ok := w.prog.Last()
	if !ok {
		w.out.WriteString("fn main() {\n}\n")
		return
	}

	ret, _ := w.prog.TypeOf(last)
	fmt.Fprintf(&w.out, "fn main() -> %s {\n", TypeName(ret))
	for i, inst := range w.prog.Insts {
		fmt.Fprintf(&w.out, "%slet %s: %s = %s;\n", indent, ir.ValueID(i), TypeName(inst.ResultType()), w.expr(inst))
	}
	fmt.Fprintf(&w.out, "%sreturn %s;\n", indent, last)
	w.out.WriteString("}\n")
}

func (w *writer) expr(inst ir.Inst) string {
	switch inst := inst.(type) {
	case ir.Constant:
		return literal(inst.Value)
	case ir.Binary:
		return fmt.Sprintf("%s %s %s", inst.LHS, inst.Op.Symbol(), inst.RHS)
	case ir.Convert:
		return convert(inst)
	default:
		return fmt.Sprintf("/* unsupported %T */", inst)
	}
}

// literal renders a constant using the shortest faithful decimal for each
// float component.
func literal(l ir.Literal) string {
	switch l.Type() {
	case ir.Bool:
		return strconv.FormatBool(l.Bool())
	case ir.Int:
		return strconv.FormatInt(int64(l.Int()), 10)
	case ir.Float:
		return ir.FormatFloat(l.Components()[0])
	default:
		comps := l.Components()
		parts := make([]string, len(comps))
		for i, c := range comps {
			parts[i] = ir.FormatFloat(c)
		}
		return fmt.Sprintf("%s(%s)", TypeName(l.Type()), strings.Join(parts, ", "))
	}
}

func convert(c ir.Convert) string {
	if c.FromType == ir.Vec3 && c.ToType == ir.Color {
		return fmt.Sprintf("vec4<f32>(%[1]s.x, %[1]s.y, %[1]s.z, 1.0)", c.From)
	}
	// Scalar splat.
	return fmt.Sprintf("%s(%s)", TypeName(c.ToType), c.From)
}
