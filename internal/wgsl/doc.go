// Package wgsl generates WGSL source text from a validated IR program.
//
// The output is a single function whose body binds one `let` per
// instruction and returns the last value:
//
//	fn main() -> vec3<f32> {
//	    let v0: f32 = 2;
//	    let v1: vec3<f32> = vec3<f32>(1, 2, 3);
//	    let v2: vec3<f32> = vec3<f32>(v0);
//	    let v3: vec3<f32> = v2 * v1;
//	    return v3;
//	}
//
// Emission is a pure function of the program: equal programs produce
// byte-identical text.
package wgsl
