package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Literal is a constant value tagged with its own ValueType.
//
// Float-like literals store f32 components; Int stores an i32; Bool a bool.
// The zero Literal is Float(0).
type Literal struct {
	typ   ValueType
	comps [4]float32
	i     int32
	b     bool
}

// FloatLit returns a Float literal.
func FloatLit(x float32) Literal { return Literal{typ: Float, comps: [4]float32{x}} }

// Vec2Lit returns a Vec2 literal.
func Vec2Lit(x, y float32) Literal { return Literal{typ: Vec2, comps: [4]float32{x, y}} }

// Vec3Lit returns a Vec3 literal.
func Vec3Lit(x, y, z float32) Literal { return Literal{typ: Vec3, comps: [4]float32{x, y, z}} }

// Vec4Lit returns a Vec4 literal.
func Vec4Lit(x, y, z, w float32) Literal { return Literal{typ: Vec4, comps: [4]float32{x, y, z, w}} }

// ColorLit returns a Color literal (r, g, b, a).
func ColorLit(r, g, b, a float32) Literal { return Literal{typ: Color, comps: [4]float32{r, g, b, a}} }

// BoolLit returns a Bool literal.
func BoolLit(v bool) Literal { return Literal{typ: Bool, b: v} }

// IntLit returns an Int literal.
func IntLit(v int32) Literal { return Literal{typ: Int, i: v} }

// ZeroLiteral returns the default literal a Value node of type t produces.
// Color defaults to opaque black.
func ZeroLiteral(t ValueType) Literal {
	switch t {
	case Color:
		return ColorLit(0, 0, 0, 1)
	case Bool:
		return BoolLit(false)
	case Int:
		return IntLit(0)
	default:
		return Literal{typ: t}
	}
}

// LiteralFromComponents builds a float-like literal of type t from exactly
// t.Components() values.
func LiteralFromComponents(t ValueType, comps []float32) (Literal, error) {
	if !t.IsFloatVector() {
		return Literal{}, fmt.Errorf("%s literal cannot be built from float components", t)
	}
	if len(comps) != t.Components() {
		return Literal{}, fmt.Errorf("%s literal needs %d component(s), got %d", t, t.Components(), len(comps))
	}
	lit := Literal{typ: t}
	copy(lit.comps[:], comps)
	return lit, nil
}

// Type returns the literal's value type.
func (l Literal) Type() ValueType { return l.typ }

// Components returns the f32 components of a float-like literal, nil otherwise.
func (l Literal) Components() []float32 {
	if !l.typ.IsFloatVector() {
		return nil
	}
	out := make([]float32, l.typ.Components())
	copy(out, l.comps[:])
	return out
}

// Bool returns the value of a Bool literal.
func (l Literal) Bool() bool { return l.b }

// Int returns the value of an Int literal.
func (l Literal) Int() int32 { return l.i }

// Equal reports whether two literals have the same type and value.
func (l Literal) Equal(o Literal) bool {
	return l == o
}

// FormatFloat renders an f32 as its shortest faithful decimal without an exponent
// (0 → "0", 42 → "42", 1.5 → "1.5").
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// String renders the literal for IR dumps and messages: scalars bare,
// vectors as a bracketed list.
func (l Literal) String() string {
	switch l.typ {
	case Bool:
		return strconv.FormatBool(l.b)
	case Int:
		return strconv.FormatInt(int64(l.i), 10)
	case Float:
		return FormatFloat(l.comps[0])
	default:
		return "[" + strings.Join(l.componentStrings(), ", ") + "]"
	}
}

// componentStrings renders each float component with FormatFloat.
func (l Literal) componentStrings() []string {
	n := l.typ.Components()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = FormatFloat(l.comps[i])
	}
	return out
}

// CanonicalValue returns the literal as a float-free value for canonical JSON.
func (l Literal) CanonicalValue() map[string]any {
	obj := map[string]any{"type": l.typ.String()}
	switch l.typ {
	case Bool:
		obj["value"] = l.b
	case Int:
		obj["value"] = int64(l.i)
	default:
		comps := l.componentStrings()
		vals := make([]any, len(comps))
		for i, c := range comps {
			vals[i] = c
		}
		obj["value"] = vals
	}
	return obj
}
