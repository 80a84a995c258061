package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/pipeline"
	"github.com/roach88/shadegraph/internal/testutil"
)

// createTestStore opens a store in a temp dir with sequential ids and a
// deterministic clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("run")),
		WithClock(testutil.NewDeterministicClock().Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// compileAdd compiles x + y over Floats.
func compileAdd(t *testing.T) *pipeline.Result {
	t.Helper()
	b := testutil.NewGraph(t)
	x := b.Value(ir.Float)
	y := b.Value(ir.Float)
	sum := b.Math(ir.Add, ir.Float)
	b.Link(x, sum, "lhs")
	b.Link(y, sum, "rhs")

	res, err := pipeline.Compile(context.Background(), pipeline.Env{}, b.G, []graph.NodeID{sum})
	require.NoError(t, err)
	return res
}

// compileMissingInput compiles a math node with nothing connected.
func compileMissingInput(t *testing.T) *pipeline.Result {
	t.Helper()
	b := testutil.NewGraph(t)
	sum := b.Math(ir.Add, ir.Float)

	res, err := pipeline.Compile(context.Background(), pipeline.Env{}, b.G, []graph.NodeID{sum})
	require.Error(t, err)
	return res
}
