package wgsl

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/shadegraph/internal/ir"
)

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestEmit_SingleFloat(t *testing.T) {
	p := ir.NewProgram()
	p.Append(ir.Constant{Value: ir.FloatLit(0), Type: ir.Float})

	want := "fn main() -> f32 {\n    let v0: f32 = 0;\n    return v0;\n}\n"
	assert.Equal(t, want, Emit(p))
}

func TestEmit_Add(t *testing.T) {
	p := ir.NewProgram()
	a := p.Append(ir.Constant{Value: ir.FloatLit(0), Type: ir.Float})
	b := p.Append(ir.Constant{Value: ir.FloatLit(0), Type: ir.Float})
	p.Append(ir.Binary{Op: ir.Add, LHS: a, RHS: b, Type: ir.Float})

	out := Emit(p)
	assert.Contains(t, out, "    let v2: f32 = v0 + v1;\n")
	assert.Contains(t, out, "    return v2;\n")
}

func TestEmit_Empty(t *testing.T) {
	assert.Equal(t, "fn main() {\n}\n", Emit(ir.NewProgram()))
}

func TestEmit_Literals(t *testing.T) {
	tests := []struct {
		lit  ir.Literal
		want string
	}{
		{ir.FloatLit(42), "42"},
		{ir.FloatLit(1.5), "1.5"},
		{ir.FloatLit(0.1), "0.1"},
		{ir.FloatLit(-3), "-3"},
		{ir.Vec2Lit(0, 0), "vec2<f32>(0, 0)"},
		{ir.Vec3Lit(0, 0, 1), "vec3<f32>(0, 0, 1)"},
		{ir.Vec4Lit(1, 2, 3, 4), "vec4<f32>(1, 2, 3, 4)"},
		{ir.ColorLit(0, 0, 0, 1), "vec4<f32>(0, 0, 0, 1)"},
		{ir.BoolLit(false), "false"},
		{ir.IntLit(-7), "-7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, literal(tt.lit))
		})
	}
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "f32", TypeName(ir.Float))
	assert.Equal(t, "vec2<f32>", TypeName(ir.Vec2))
	assert.Equal(t, "vec3<f32>", TypeName(ir.Vec3))
	assert.Equal(t, "vec4<f32>", TypeName(ir.Vec4))
	assert.Equal(t, "vec4<f32>", TypeName(ir.Color))
	assert.Equal(t, "bool", TypeName(ir.Bool))
	assert.Equal(t, "i32", TypeName(ir.Int))
}

func TestEmit_Conversions(t *testing.T) {
	p := ir.NewProgram()
	f := p.Append(ir.Constant{Value: ir.FloatLit(2), Type: ir.Float})
	v := p.Append(ir.Constant{Value: ir.Vec3Lit(1, 2, 3), Type: ir.Vec3})
	splat := p.Append(ir.Convert{From: f, FromType: ir.Float, ToType: ir.Vec3})
	mul := p.Append(ir.Binary{Op: ir.Mul, LHS: splat, RHS: v, Type: ir.Vec3})
	p.Append(ir.Convert{From: mul, FromType: ir.Vec3, ToType: ir.Color})

	newGolden(t).Assert(t, "conversions", []byte(Emit(p)))
}

func TestEmit_AllOperators(t *testing.T) {
	p := ir.NewProgram()
	a := p.Append(ir.Constant{Value: ir.Vec2Lit(1, 2), Type: ir.Vec2})
	b := p.Append(ir.Constant{Value: ir.Vec2Lit(0.5, 4), Type: ir.Vec2})
	sum := p.Append(ir.Binary{Op: ir.Add, LHS: a, RHS: b, Type: ir.Vec2})
	diff := p.Append(ir.Binary{Op: ir.Sub, LHS: sum, RHS: b, Type: ir.Vec2})
	prod := p.Append(ir.Binary{Op: ir.Mul, LHS: diff, RHS: a, Type: ir.Vec2})
	p.Append(ir.Binary{Op: ir.Div, LHS: prod, RHS: b, Type: ir.Vec2})

	newGolden(t).Assert(t, "operators", []byte(Emit(p)))
}

func TestEmit_Pure(t *testing.T) {
	build := func() *ir.Program {
		p := ir.NewProgram()
		c := p.Append(ir.Constant{Value: ir.ColorLit(1, 0.25, 0, 1), Type: ir.Color})
		p.Append(ir.Binary{Op: ir.Mul, LHS: c, RHS: c, Type: ir.Color})
		return p
	}
	p := build()
	assert.Equal(t, Emit(p), Emit(p))
	assert.Equal(t, Emit(p), Emit(build()))
}
