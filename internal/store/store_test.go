package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/compiler"
	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/testutil"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_InvalidPath(t *testing.T) {
	// A regular file where a directory is needed
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := Open(filepath.Join(blocker, "runs.db"))
	assert.Error(t, err)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name, want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, s.verifyPragma(tt.name, tt.want))
		})
	}
}

func TestRecord_SuccessfulCompilation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := FromResult("add.cue", []string{"sum"}, compileAdd(t))
	require.NoError(t, s.Record(ctx, c))

	assert.Equal(t, "run-0001", c.ID)
	assert.Equal(t, int64(1), c.Seq)
	assert.Equal(t, testutil.Epoch.Add(1e9), c.CreatedAt)

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, got.Status)
	assert.Equal(t, "add.cue", got.Document)
	assert.Equal(t, []string{"sum"}, got.Roots)
	assert.Equal(t, 3, got.InstructionCount)
	assert.Equal(t, 0, got.ConvertCount)
	assert.NotEmpty(t, got.GraphHash)
	assert.NotEmpty(t, got.ProgramHash)
	assert.Contains(t, got.WGSL, "return v2;")
	assert.Equal(t, ir.CompilerVersion, got.CompilerVersion)
	assert.Equal(t, ir.IRVersion, got.IRVersion)
	assert.Empty(t, got.ErrorCode)
	assert.Empty(t, got.Diagnostics)
	assert.Equal(t, c.CreatedAt, got.CreatedAt)
}

func TestRecord_FailedCompilationKeepsDiagnostics(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := compileMissingInput(t)
	c := FromResult("broken.cue", []string{"sum"}, res)
	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, compiler.ErrCodeUnconnectedRequiredInput, c.ErrorCode)
	require.NoError(t, s.Record(ctx, c))

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Empty(t, got.WGSL)
	assert.Empty(t, got.ProgramHash)

	require.Len(t, got.Diagnostics, len(res.Diagnostics))
	last := got.Diagnostics[len(got.Diagnostics)-1]
	assert.Equal(t, diagnostic.SeverityError, last.Severity)
	assert.Equal(t, res.Diagnostics[len(res.Diagnostics)-1], last)
}

func TestGet_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.List(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, doc := range []string{"a.cue", "b.cue", "c.cue"} {
		require.NoError(t, s.Record(ctx, FromResult(doc, nil, compileAdd(t))))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c.cue", "b.cue", "a.cue"},
		[]string{all[0].Document, all[1].Document, all[2].Document})
	assert.Equal(t, int64(3), all[0].Seq)
	assert.Equal(t, []string{}, all[0].Roots)

	limited, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLatest_ByGraphHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := FromResult("add.cue", nil, compileAdd(t))
	require.NoError(t, s.Record(ctx, first))
	other := FromResult("broken.cue", nil, compileMissingInput(t))
	require.NoError(t, s.Record(ctx, other))
	second := FromResult("add.cue", nil, compileAdd(t))
	require.NoError(t, s.Record(ctx, second))

	assert.Equal(t, first.GraphHash, second.GraphHash, "identical graphs hash identically")

	got, err := s.Latest(ctx, first.GraphHash)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = s.Latest(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUUIDv7_IDs(t *testing.T) {
	a, err := UUIDv7{}.NewID()
	require.NoError(t, err)
	b, err := UUIDv7{}.NewID()
	require.NoError(t, err)

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}
