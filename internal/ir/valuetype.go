package ir

import (
	"fmt"
	"strings"
)

// ValueType is the closed set of value kinds flowing through sockets and IR values.
//
// Color and Vec4 share a WGSL representation but are distinct types: they are
// never interchangeable at link time and never unify.
type ValueType uint8

const (
	Float ValueType = iota
	Vec2
	Vec3
	Vec4
	Bool
	Int
	Color
)

// AllValueTypes lists every ValueType in declaration order.
var AllValueTypes = []ValueType{Float, Vec2, Vec3, Vec4, Bool, Int, Color}

var valueTypeNames = [...]string{
	Float: "Float",
	Vec2:  "Vec2",
	Vec3:  "Vec3",
	Vec4:  "Vec4",
	Bool:  "Bool",
	Int:   "Int",
	Color: "Color",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// Valid reports whether t is one of the declared value types.
func (t ValueType) Valid() bool {
	return int(t) < len(valueTypeNames)
}

// Components returns the number of f32 components for vector-like types,
// 1 for scalars.
func (t ValueType) Components() int {
	switch t {
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Color:
		return 4
	default:
		return 1
	}
}

// IsFloatVector reports whether the type is made of f32 components.
func (t ValueType) IsFloatVector() bool {
	switch t {
	case Float, Vec2, Vec3, Vec4, Color:
		return true
	default:
		return false
	}
}

// ParseValueType resolves a type name case-insensitively ("float", "Vec3", "COLOR").
func ParseValueType(s string) (ValueType, error) {
	for i, name := range valueTypeNames {
		if strings.EqualFold(name, s) {
			return ValueType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid value type %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(b []byte) error {
	parsed, err := ParseValueType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// BinaryOp is the closed set of arithmetic operators.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

var binaryOpNames = [...]string{Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div"}
var binaryOpSymbols = [...]string{Add: "+", Sub: "-", Mul: "*", Div: "/"}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", uint8(op))
}

// Symbol returns the infix operator used in shader source.
func (op BinaryOp) Symbol() string {
	if int(op) < len(binaryOpSymbols) {
		return binaryOpSymbols[op]
	}
	return "?"
}

// ParseBinaryOp resolves an operator by name ("add") or symbol ("+").
func ParseBinaryOp(s string) (BinaryOp, error) {
	for i := range binaryOpNames {
		if strings.EqualFold(binaryOpNames[i], s) || binaryOpSymbols[i] == s {
			return BinaryOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown binary operator %q", s)
}
