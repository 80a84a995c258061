package harness

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shadegraph/internal/pipeline"
	"github.com/roach88/shadegraph/internal/store"
	"github.com/roach88/shadegraph/internal/testutil"
)

func loadTestScenario(t *testing.T, file string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", file))
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s, err := LoadScenario(file)
			require.NoError(t, err)

			if s.Golden {
				RunWithGolden(t, s)
				return
			}

			res, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, res.Pass, "errors: %v", res.Errors)
		})
	}
}

func TestRun_FailedCompilationIsNotAnError(t *testing.T) {
	res, err := Run(context.Background(), loadTestScenario(t, "cycle.yaml"))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, res.WGSL)
	assert.Empty(t, res.IR)
	assert.True(t, res.Pass)
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	s := &Scenario{
		Name:        "wrong_expectations",
		Description: "every assertion is wrong",
		Source:      `nodes: a: {kind: "value", type: "Float"}` + "\nroots: [\"a\"]\n",
		Assertions: []Assertion{
			{Type: AssertStatus, Status: StatusFailed},
			{Type: AssertInstructionCount, Count: 2},
			{Type: AssertWGSLContains, Text: "vec4"},
			{Type: AssertErrorCode, Code: "E301"},
		},
	}

	res, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, res.Pass)
	require.Len(t, res.Errors, 4)
	assert.Contains(t, res.Errors[0], "Expected: status failed")
	assert.Contains(t, res.Errors[1], "Actual: 1 instruction(s)")
	assert.Contains(t, res.Errors[3], "compilation succeeded")
}

func TestRun_UnknownRootIsAnError(t *testing.T) {
	s := loadTestScenario(t, "add.yaml")
	s.Roots = []string{"nope"}

	_, err := Run(context.Background(), s)
	assert.ErrorContains(t, err, "resolve roots")
}

func TestRun_BadDocumentIsAnError(t *testing.T) {
	s := &Scenario{Name: "bad", Description: "d", Source: "nodes: {"}
	_, err := Run(context.Background(), s)
	assert.ErrorContains(t, err, "load graph")
}

func TestRun_RecordsInStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"),
		store.WithIDGenerator(testutil.NewSequentialIDs("scenario")),
		store.WithClock(testutil.NewDeterministicClock().Now))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := New(WithStore(st))
	ctx := context.Background()

	ok, err := h.Run(ctx, loadTestScenario(t, "splat.yaml"))
	require.NoError(t, err)
	failed, err := h.Run(ctx, loadTestScenario(t, "missing_input.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "scenario-0001", ok.RunID)
	assert.Equal(t, "scenario-0002", failed.RunID)

	rec, err := st.Get(ctx, ok.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusOK, rec.Status)
	assert.Equal(t, []string{"scale"}, rec.Roots)
	assert.Equal(t, ok.WGSL, rec.WGSL)
	assert.Len(t, rec.Diagnostics, 2)

	rec, err = st.Get(ctx, failed.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, rec.Status)
	assert.Equal(t, "E305", rec.ErrorCode)
	assert.Equal(t, "scenario:missing_required_input", rec.Document)
}

func TestRun_LogsThroughEnv(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := New(WithEnv(pipeline.Env{Logger: logger}))
	_, err := h.Run(context.Background(), loadTestScenario(t, "add.yaml"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "scenario completed")
	assert.Contains(t, buf.String(), "scenario=add_two_values")
}
