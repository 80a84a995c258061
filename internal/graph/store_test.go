package graph

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/ir"
)

// addValue adds a Value node with one output named "out".
func addValue(t *testing.T, s *Store, typ ir.ValueType) (NodeID, SocketID) {
	t.Helper()
	id := s.AddNode(Value{Type: typ}, Position{}, nil, []Port{{Name: "out", Type: typ}})
	n, ok := s.Node(id)
	require.True(t, ok)
	return id, n.Outputs[0]
}

// addMath adds a Math node with inputs lhs/rhs and output out, all of typ.
func addMath(t *testing.T, s *Store, op ir.BinaryOp, typ ir.ValueType) Node {
	t.Helper()
	id := s.AddNode(Math{Op: op}, Position{},
		[]Port{{Name: "lhs", Type: typ}, {Name: "rhs", Type: typ}},
		[]Port{{Name: "out", Type: typ}})
	n, ok := s.Node(id)
	require.True(t, ok)
	return n
}

func TestAddNodeCreatesSocketsInOrder(t *testing.T) {
	s := New()
	m := addMath(t, s, ir.Add, ir.Float)

	require.Len(t, m.Inputs, 2)
	require.Len(t, m.Outputs, 1)

	lhs, ok := s.Socket(m.Inputs[0])
	require.True(t, ok)
	assert.Equal(t, "lhs", lhs.Name)
	assert.Equal(t, Input, lhs.Direction)
	assert.Equal(t, m.ID, lhs.Node)
	assert.False(t, lhs.IsOptional(), "AddNode creates required inputs")

	out, ok := s.Socket(m.Outputs[0])
	require.True(t, ok)
	assert.Equal(t, Output, out.Direction)
	assert.Nil(t, out.Config)
}

func TestAddNodeWithConfigOptionalDefault(t *testing.T) {
	s := New()
	id := s.AddNodeWithConfig(Generic{Name: "out"}, Position{X: 1, Y: 2},
		[]InputDef{Optional("in", ir.Float, ir.FloatLit(42))},
		[]Port{{Name: "out", Type: ir.Float}})

	n, ok := s.Node(id)
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 2}, n.Position)

	in, ok := s.Socket(n.Inputs[0])
	require.True(t, ok)
	assert.True(t, in.IsOptional())
	def, ok := in.Default()
	require.True(t, ok)
	assert.True(t, def.Equal(ir.FloatLit(42)))
}

func TestIDsAreMonotonicAndNeverReused(t *testing.T) {
	s := New()
	a, aOut := addValue(t, s, ir.Float)
	m := addMath(t, s, ir.Add, ir.Float)
	assert.Greater(t, m.ID, a)

	l1, err := s.Connect(aOut, m.Inputs[0])
	require.NoError(t, err)
	require.True(t, s.Disconnect(l1))

	l2, err := s.Connect(aOut, m.Inputs[0])
	require.NoError(t, err)
	assert.Greater(t, l2, l1, "link ids must not be reused after Disconnect")

	require.True(t, s.RemoveNode(a))
	b, _ := addValue(t, s, ir.Float)
	assert.Greater(t, b, m.ID, "node ids must not be reused after RemoveNode")
}

func TestConnectSuccess(t *testing.T) {
	s := New()
	_, out := addValue(t, s, ir.Vec3)
	m := addMath(t, s, ir.Mul, ir.Vec3)

	id, err := s.Connect(out, m.Inputs[1])
	require.NoError(t, err)

	link, ok := s.Link(id)
	require.True(t, ok)
	assert.Equal(t, out, link.From)
	assert.Equal(t, m.Inputs[1], link.To)

	in, ok := s.IncomingLink(m.Inputs[1])
	require.True(t, ok)
	assert.Equal(t, id, in.ID)

	assert.Equal(t, []Link{link}, slices.Collect(s.LinksOutOf(out)))
	assert.Empty(t, slices.Collect(s.LinksInto(m.Inputs[0])))
}

func TestConnectErrors(t *testing.T) {
	s := New()
	_, floatOut := addValue(t, s, ir.Float)
	_, colorOut := addValue(t, s, ir.Color)
	vec4 := addMath(t, s, ir.Add, ir.Vec4)
	floats := addMath(t, s, ir.Add, ir.Float)

	_, err := s.Connect(floatOut, floats.Inputs[0])
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to SocketID
		kind     ErrorKind
		check    func(t *testing.T, e *Error)
	}{
		{
			name: "unknown source", from: 999, to: floats.Inputs[1], kind: SocketNotFound,
			check: func(t *testing.T, e *Error) { assert.Equal(t, SocketID(999), e.Socket) },
		},
		{
			name: "unknown target", from: floatOut, to: 998, kind: SocketNotFound,
			check: func(t *testing.T, e *Error) { assert.Equal(t, SocketID(998), e.Socket) },
		},
		{
			name: "input as source", from: floats.Inputs[1], to: floats.Inputs[0], kind: WrongDirection,
			check: func(t *testing.T, e *Error) {
				assert.Equal(t, Output, e.Expected)
				assert.Equal(t, Input, e.Found)
			},
		},
		{
			name: "output as target", from: floatOut, to: floats.Outputs[0], kind: WrongDirection,
			check: func(t *testing.T, e *Error) {
				assert.Equal(t, Input, e.Expected)
				assert.Equal(t, Output, e.Found)
			},
		},
		{
			name: "color into vec4", from: colorOut, to: vec4.Inputs[0], kind: TypeMismatch,
			check: func(t *testing.T, e *Error) {
				assert.Equal(t, ir.Color, e.From)
				assert.Equal(t, ir.Vec4, e.To)
			},
		},
		{
			name: "second link into input", from: floatOut, to: floats.Inputs[0], kind: InputAlreadyConnected,
			check: func(t *testing.T, e *Error) { assert.Equal(t, floats.Inputs[0], e.Socket) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Connect(tt.from, tt.to)
			require.Error(t, err)

			var gerr *Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.kind, gerr.Kind)
			tt.check(t, gerr)
		})
	}
}

func TestConnectCheckOrder(t *testing.T) {
	s := New()
	_, colorOut := addValue(t, s, ir.Color)
	m := addMath(t, s, ir.Add, ir.Float)

	// Wrong direction and type mismatch at once: direction wins.
	_, err := s.Connect(m.Inputs[0], m.Inputs[1])
	assert.ErrorIs(t, err, ErrWrongDirection)

	// Type mismatch and already-connected at once: type mismatch wins.
	_, floatOut := addValue(t, s, ir.Float)
	_, err = s.Connect(floatOut, m.Inputs[0])
	require.NoError(t, err)
	_, err = s.Connect(colorOut, m.Inputs[0])
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDisconnect(t *testing.T) {
	s := New()
	_, out := addValue(t, s, ir.Float)
	m := addMath(t, s, ir.Add, ir.Float)

	id, err := s.Connect(out, m.Inputs[0])
	require.NoError(t, err)

	assert.True(t, s.Disconnect(id))
	assert.False(t, s.Disconnect(id), "second disconnect is a no-op")
	assert.False(t, s.Disconnect(12345))

	_, ok := s.IncomingLink(m.Inputs[0])
	assert.False(t, ok)
	assert.Equal(t, 0, s.LinkCount())

	// The input is free again
	_, err = s.Connect(out, m.Inputs[0])
	assert.NoError(t, err)
}

func TestRemoveNodeDropsLinks(t *testing.T) {
	s := New()
	a, aOut := addValue(t, s, ir.Float)
	m := addMath(t, s, ir.Add, ir.Float)
	_, err := s.Connect(aOut, m.Inputs[0])
	require.NoError(t, err)
	_, err = s.Connect(aOut, m.Inputs[1])
	require.NoError(t, err)

	require.True(t, s.RemoveNode(a))
	assert.False(t, s.HasNode(a))
	assert.Equal(t, 0, s.LinkCount())
	_, ok := s.Socket(aOut)
	assert.False(t, ok)
	assert.False(t, s.RemoveNode(a))
}

func TestLookupsReturnCopies(t *testing.T) {
	s := New()
	m := addMath(t, s, ir.Add, ir.Float)

	n, _ := s.Node(m.ID)
	n.Inputs[0] = 999

	again, _ := s.Node(m.ID)
	assert.Equal(t, m.Inputs[0], again.Inputs[0], "mutating a returned node must not affect the store")
}

func TestSocketByName(t *testing.T) {
	s := New()
	m := addMath(t, s, ir.Add, ir.Float)

	id, ok := s.SocketByName(m.ID, Input, "rhs")
	require.True(t, ok)
	assert.Equal(t, m.Inputs[1], id)

	_, ok = s.SocketByName(m.ID, Output, "rhs")
	assert.False(t, ok)
	_, ok = s.SocketByName(999, Input, "rhs")
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	_, out := addValue(t, s, ir.Float)
	m := addMath(t, s, ir.Add, ir.Float)

	snap := s.Clone()
	_, err := s.Connect(out, m.Inputs[0])
	require.NoError(t, err)

	assert.Equal(t, 1, s.LinkCount())
	assert.Equal(t, 0, snap.LinkCount(), "clone must not see later edits")

	// Id sequences are copied too, so the clone keeps allocating fresh ids.
	n := snap.AddNode(Generic{Name: "g"}, Position{}, nil, nil)
	assert.Greater(t, n, m.ID)
}

func TestNodeIDsSorted(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		addValue(t, s, ir.Float)
	}
	ids := s.NodeIDs()
	assert.True(t, slices.IsSorted(ids))
	assert.Len(t, ids, 5)
}

func TestHashIgnoresPosition(t *testing.T) {
	build := func(pos Position) *Store {
		s := New()
		s.AddNode(Value{Type: ir.Float}, pos, nil, []Port{{Name: "out", Type: ir.Float}})
		return s
	}

	h1, err := build(Position{X: 0, Y: 0}).Hash()
	require.NoError(t, err)
	h2, err := build(Position{X: 100, Y: -5}).Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestHashChangesWithLinks(t *testing.T) {
	s := New()
	_, out := addValue(t, s, ir.Float)
	m := addMath(t, s, ir.Add, ir.Float)

	before, err := s.Hash()
	require.NoError(t, err)
	_, err = s.Connect(out, m.Inputs[0])
	require.NoError(t, err)
	after, err := s.Hash()
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestErrorMessagesAndCodes(t *testing.T) {
	err := &Error{Kind: CycleDetected, Cycles: [][]NodeID{{1, 2}, {3}}}
	assert.Equal(t, ErrCodeCycleDetected, err.Code())
	assert.Contains(t, err.Error(), "n1 → n2 → n1")
	assert.Contains(t, err.Error(), "n3 → n3")

	assert.ErrorIs(t, &Error{Kind: NodeNotFound, Node: 5}, ErrNodeNotFound)
	assert.NotErrorIs(t, &Error{Kind: NodeNotFound}, ErrSocketNotFound)
}
