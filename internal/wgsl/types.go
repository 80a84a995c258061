package wgsl

import "github.com/roach88/shadegraph/internal/ir"

// TypeName returns the WGSL spelling of t. Color shares vec4<f32> with Vec4.
func TypeName(t ir.ValueType) string {
	switch t {
	case ir.Float:
		return "f32"
	case ir.Vec2:
		return "vec2<f32>"
	case ir.Vec3:
		return "vec3<f32>"
	case ir.Vec4, ir.Color:
		return "vec4<f32>"
	case ir.Bool:
		return "bool"
	case ir.Int:
		return "i32"
	default:
		return "f32"
	}
}
