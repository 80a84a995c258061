package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/testutil"
)

func TestCanConvert_ClosedTable(t *testing.T) {
	allowed := map[[2]ir.ValueType]bool{
		{ir.Float, ir.Vec2}:  true,
		{ir.Float, ir.Vec3}:  true,
		{ir.Float, ir.Vec4}:  true,
		{ir.Float, ir.Color}: true,
		{ir.Vec3, ir.Color}:  true,
	}
	for _, from := range ir.AllValueTypes {
		for _, to := range ir.AllValueTypes {
			assert.Equal(t, allowed[[2]ir.ValueType{from, to}], CanConvert(from, to), "%s -> %s", from, to)
		}
	}
}

func TestInsertConversions_FloatOperandOfVec3Binary(t *testing.T) {
	p := ir.NewProgram()
	f := p.Append(ir.Constant{Value: ir.FloatLit(2), Type: ir.Float})
	v := p.Append(ir.Constant{Value: ir.Vec3Lit(1, 2, 3), Type: ir.Vec3})
	p.Append(ir.Binary{Op: ir.Mul, LHS: f, RHS: v, Type: ir.Vec3})
	require.Equal(t, 3, p.Len())

	out, err := InsertConversions(p)
	require.NoError(t, err)

	require.Equal(t, 4, out.Len())
	assert.Equal(t, ir.Convert{From: 0, FromType: ir.Float, ToType: ir.Vec3}, out.Insts[2])
	assert.Equal(t, ir.Binary{Op: ir.Mul, LHS: 2, RHS: 1, Type: ir.Vec3}, out.Insts[3])
	assert.Equal(t, 3, p.Len(), "input program is not modified")
}

func TestInsertConversions_RemapsLaterReferences(t *testing.T) {
	p := ir.NewProgram()
	f := p.Append(ir.Constant{Value: ir.FloatLit(1), Type: ir.Float})
	c := p.Append(ir.Constant{Value: ir.Vec3Lit(0, 1, 0), Type: ir.Vec3})
	sum := p.Append(ir.Binary{Op: ir.Add, LHS: c, RHS: f, Type: ir.Vec3})
	p.Append(ir.Binary{Op: ir.Mul, LHS: sum, RHS: sum, Type: ir.Vec3})

	out, err := InsertConversions(p)
	require.NoError(t, err)

	require.Equal(t, 5, out.Len())
	assert.Equal(t, ir.Binary{Op: ir.Add, LHS: 1, RHS: 2, Type: ir.Vec3}, out.Insts[3])
	assert.Equal(t, ir.Binary{Op: ir.Mul, LHS: 3, RHS: 3, Type: ir.Vec3}, out.Insts[4])
	require.NoError(t, ValidateIR(out))
}

func TestInsertConversions_OnePerIncompatibleOperand(t *testing.T) {
	p := ir.NewProgram()
	a := p.Append(ir.Constant{Value: ir.FloatLit(1), Type: ir.Float})
	b := p.Append(ir.Constant{Value: ir.FloatLit(2), Type: ir.Float})
	p.Append(ir.Binary{Op: ir.Add, LHS: a, RHS: b, Type: ir.Color})

	out, err := InsertConversions(p)
	require.NoError(t, err)
	assert.Equal(t, 2, out.CountConverts())
	assert.Equal(t, 5, out.Len())
}

func TestInsertConversions_NoConversion(t *testing.T) {
	tests := []struct {
		name     string
		from, to ir.ValueType
		lit      ir.Literal
	}{
		{"vec2 to vec3", ir.Vec2, ir.Vec3, ir.Vec2Lit(1, 2)},
		{"vec4 to color", ir.Vec4, ir.Color, ir.Vec4Lit(1, 2, 3, 4)},
		{"int to float", ir.Int, ir.Float, ir.IntLit(3)},
		{"color to vec3", ir.Color, ir.Vec3, ir.ColorLit(0, 0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ir.NewProgram()
			x := p.Append(ir.Constant{Value: tt.lit, Type: tt.from})
			p.Append(ir.Binary{Op: ir.Add, LHS: x, RHS: x, Type: tt.to})

			_, err := InsertConversions(p)

			var cerr *ConversionError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, NoConversion, cerr.Kind)
			assert.Equal(t, tt.from, cerr.From)
			assert.Equal(t, tt.to, cerr.To)
			assert.Equal(t, 1, cerr.Inst)
		})
	}
}

func TestInsertConversions_RevalidatesExistingConverts(t *testing.T) {
	ok := ir.NewProgram()
	v := ok.Append(ir.Constant{Value: ir.Vec3Lit(1, 1, 1), Type: ir.Vec3})
	ok.Append(ir.Convert{From: v, FromType: ir.Vec3, ToType: ir.Color})

	out, err := InsertConversions(ok)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	bad := ir.NewProgram()
	x := bad.Append(ir.Constant{Value: ir.IntLit(1), Type: ir.Int})
	bad.Append(ir.Convert{From: x, FromType: ir.Int, ToType: ir.Vec2})

	_, err = InsertConversions(bad)
	assert.ErrorIs(t, err, &ConversionError{Kind: NoConversion})
}

func TestInsertConversions_UnresolvedOperand(t *testing.T) {
	p := ir.NewProgram()
	p.Append(ir.Binary{Op: ir.Add, LHS: 0, RHS: 5, Type: ir.Float})

	_, err := InsertConversions(p)

	var cerr *ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, UnresolvedOperand, cerr.Kind)
	assert.Equal(t, ir.ValueID(0), cerr.Value)
}

func TestInsertConversions_FromGraphDefault(t *testing.T) {
	b := testutil.NewGraph(t)
	v := b.Value(ir.Vec3)
	m := b.MathWith(ir.Add, ir.Vec3,
		graph.Optional("lhs", ir.Vec3, ir.FloatLit(0.5)),
		graph.Required("rhs", ir.Vec3))
	b.Link(v, m, "rhs")

	p, err := lower(t, b, m)
	require.NoError(t, err)
	require.Equal(t, 4, p.Len(), "lowering converts the default to the socket type")

	out, err := InsertConversions(p)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len(), "the lowered Convert is revalidated, not duplicated")
	assert.Equal(t, 1, out.CountConverts())

	conv, ok := out.Insts[2].(ir.Convert)
	require.True(t, ok, "the Convert sits directly before the Binary")
	assert.Equal(t, ir.Float, conv.FromType)
	assert.Equal(t, ir.Vec3, conv.ToType)
}

func TestInsertConversionsWithOrigins_FollowsRemap(t *testing.T) {
	p := ir.NewProgram()
	f := p.Append(ir.Constant{Value: ir.FloatLit(2), Type: ir.Float})
	v := p.Append(ir.Constant{Value: ir.Vec3Lit(1, 2, 3), Type: ir.Vec3})
	bin := p.Append(ir.Binary{Op: ir.Mul, LHS: f, RHS: v, Type: ir.Vec3})

	origins := Origins{
		f:   {Node: 1, Socket: 4},
		v:   {Node: 2},
		bin: {Node: 3},
	}
	out, moved, err := InsertConversionsWithOrigins(p, origins)
	require.NoError(t, err)
	require.Equal(t, 4, out.Len())

	assert.Equal(t, Origins{
		0: {Node: 1, Socket: 4},
		1: {Node: 2},
		2: {Node: 3},
		3: {Node: 3},
	}, moved, "the inserted Convert takes the origin of the Binary it feeds")

	_, none, err := InsertConversionsWithOrigins(p, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestInsertConversions_Empty(t *testing.T) {
	out, err := InsertConversions(ir.NewProgram())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}
