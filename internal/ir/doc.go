// Package ir provides the value types and the linear intermediate representation
// shared by every stage of the shadegraph compiler.
//
// This package contains type definitions and pure helpers only. All other internal
// packages import ir; ir imports nothing internal, so it stays the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - ValueType is a closed set (Float, Vec2, Vec3, Vec4, Bool, Int, Color)
//   - A value's identity IS its position in the program (ValueID(i) is the
//     result of instruction i)
//   - An instruction may only reference values strictly before itself
//   - Canonical JSON never contains floats; float components are rendered as
//     their shortest decimal strings before hashing
package ir
