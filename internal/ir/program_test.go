package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *Program {
	p := NewProgram()
	a := p.Append(Constant{Value: FloatLit(1), Type: Float})
	b := p.Append(Constant{Value: Vec3Lit(0, 0, 0), Type: Vec3})
	c := p.Append(Convert{From: a, FromType: Float, ToType: Vec3})
	p.Append(Binary{Op: Add, LHS: c, RHS: b, Type: Vec3})
	return p
}

func TestProgramAppendNumbersSequentially(t *testing.T) {
	p := NewProgram()
	assert.Equal(t, ValueID(0), p.Append(Constant{Value: FloatLit(0), Type: Float}))
	assert.Equal(t, ValueID(1), p.Append(Constant{Value: FloatLit(0), Type: Float}))
	assert.Equal(t, 2, p.Len())

	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, ValueID(1), last)
}

func TestProgramTypeOf(t *testing.T) {
	p := sampleProgram()

	typ, ok := p.TypeOf(2)
	require.True(t, ok)
	assert.Equal(t, Vec3, typ)

	_, ok = p.TypeOf(4)
	assert.False(t, ok)
	_, ok = p.TypeOf(-1)
	assert.False(t, ok)
}

func TestProgramEmpty(t *testing.T) {
	p := NewProgram()
	_, ok := p.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, p.CountConverts())

	var nilProg *Program
	assert.Equal(t, 0, nilProg.Len())
}

func TestProgramString(t *testing.T) {
	expected := "v0 = const Float 1\n" +
		"v1 = const Vec3 [0, 0, 0]\n" +
		"v2 = convert Float -> Vec3 v0\n" +
		"v3 = Add Vec3 v2, v1\n"
	assert.Equal(t, expected, sampleProgram().String())
}

func TestInstRefs(t *testing.T) {
	assert.Empty(t, Constant{}.Refs())
	assert.Equal(t, []ValueID{3, 4}, Binary{LHS: 3, RHS: 4}.Refs())
	assert.Equal(t, []ValueID{7}, Convert{From: 7}.Refs())
}

func TestProgramHashDeterminism(t *testing.T) {
	h1, err := ProgramHash(sampleProgram())
	require.NoError(t, err)
	h2, err := ProgramHash(sampleProgram())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ProgramHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestProgramHashChangesWithLiteral(t *testing.T) {
	p1 := NewProgram()
	p1.Append(Constant{Value: FloatLit(1), Type: Float})
	p2 := NewProgram()
	p2.Append(Constant{Value: FloatLit(2), Type: Float})

	assert.NotEqual(t, MustProgramHash(p1), MustProgramHash(p2))
}

func TestHashCanonicalDomainSeparation(t *testing.T) {
	v := map[string]any{"a": 1}
	h1, err := HashCanonical(DomainGraph, v)
	require.NoError(t, err)
	h2, err := HashCanonical(DomainProgram, v)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
