package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeHistory(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// seedHistory records a successful and a failed compilation and returns
// the database path and the successful run's output.
func seedHistory(t *testing.T) (string, CompileOutput) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := executeCompile(t, "json", "--db", dbPath, graphPath("add.cue"))
	require.NoError(t, err)
	var resp struct {
		Data CompileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	_, _, err = executeCompile(t, "text", "--db", dbPath, graphPath("missing.cue"))
	require.Error(t, err)

	return dbPath, resp.Data
}

func TestHistoryRequiresDatabase(t *testing.T) {
	out, err := executeHistory(t, "text")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}

func TestHistoryListNewestFirst(t *testing.T) {
	dbPath, _ := seedHistory(t)

	out, err := executeHistory(t, "json", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data []CompilationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "failed", resp.Data[0].Status)
	assert.Equal(t, "E305", resp.Data[0].ErrorCode)
	assert.Equal(t, "ok", resp.Data[1].Status)
	assert.Greater(t, resp.Data[0].Seq, resp.Data[1].Seq)
	assert.Empty(t, resp.Data[1].WGSL, "listings leave out the emitted code")
}

func TestHistoryListText(t *testing.T) {
	dbPath, _ := seedHistory(t)

	out, err := executeHistory(t, "text", "--db", dbPath, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "[E305]")
	assert.NotContains(t, out, "✓", "--limit 1 shows only the newest run")
}

func TestHistoryEmpty(t *testing.T) {
	out, err := executeHistory(t, "text", "--db", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No compilations recorded.")
}

func TestHistoryShowRun(t *testing.T) {
	dbPath, run := seedHistory(t)

	out, err := executeHistory(t, "text", "--db", dbPath, run.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "Run:       "+run.RunID)
	assert.Contains(t, out, "Status:    ok")
	assert.Contains(t, out, "3 instruction(s), 0 conversion(s)")
	assert.Contains(t, out, "return v2;")
}

func TestHistoryLatestForGraph(t *testing.T) {
	dbPath, run := seedHistory(t)

	out, err := executeHistory(t, "json", "--db", dbPath, "--graph", run.GraphHash)
	require.NoError(t, err)

	var resp struct {
		Data CompilationView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, run.RunID, resp.Data.ID)
	assert.Equal(t, run.Code, resp.Data.WGSL)
}

func TestHistoryUnknownRun(t *testing.T) {
	dbPath, _ := seedHistory(t)

	out, err := executeHistory(t, "text", "--db", dbPath, "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestHistoryFilters(t *testing.T) {
	dbPath, run := seedHistory(t)

	tests := []struct {
		name    string
		args    []string
		wantIDs int
		status  string
	}{
		{"failed only", []string{"--status", "failed"}, 1, "failed"},
		{"ok only", []string{"--status", "ok"}, 1, "ok"},
		{"by document", []string{"--document", run.Document}, 1, "ok"},
		{"unknown document", []string{"--document", "nope.cue"}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeHistory(t, "json", append([]string{"--db", dbPath}, tt.args...)...)
			require.NoError(t, err)

			var resp struct {
				Data []CompilationView `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.Len(t, resp.Data, tt.wantIDs)
			for _, c := range resp.Data {
				assert.Equal(t, tt.status, c.Status)
			}
		})
	}
}

func TestHistoryInvalidStatus(t *testing.T) {
	_, err := executeHistory(t, "text", "--db", filepath.Join(t.TempDir(), "runs.db"), "--status", "maybe")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
