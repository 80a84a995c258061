package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shadegraph/internal/pipeline"
	"github.com/roach88/shadegraph/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DB string
}

// ReplayResult compares a recorded run with a fresh compilation of the same
// document and roots.
type ReplayResult struct {
	RunID         string `json:"run_id"`
	Document      string `json:"document"`
	GraphChanged  bool   `json:"graph_changed"`
	Deterministic bool   `json:"deterministic"`
	RecordedHash  string `json:"recorded_program_hash,omitempty"`
	ReplayedHash  string `json:"replayed_program_hash,omitempty"`
	RecordedCode  string `json:"recorded_error_code,omitempty"`
	ReplayedCode  string `json:"replayed_error_code,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Recompile a recorded run and check it is reproduced",
		Long: `Reload the document of a recorded compilation, compile it again
from the same roots and compare the result with the record.

A run is reproduced when the graph hash is unchanged and the program
hash (or, for failed runs, the error code) is identical.

Exit codes:
  0 - Reproduced
  1 - Document changed, or the compiler output differs
  2 - Command error (unknown run, unreadable document, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (defaults to store.path)")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dbPath := opts.storePath(opts.DB)
	if dbPath == "" {
		return outputCompileError(formatter, ErrCodeStoreFailed, "no history database: pass --db or set store.path")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening %s: %v", dbPath, err))
	}
	defer st.Close()

	rec, err := st.Get(cmd.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		return outputCompileError(formatter, ErrCodeNotFound, err.Error())
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error())
	}

	doc, roots, err := loadGraph(rec.Document, rec.Roots)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	res, _ := pipeline.Compile(cmd.Context(), opts.env(), doc.Graph, roots)
	replayed := store.FromResult(rec.Document, rec.Roots, res)

	result := ReplayResult{
		RunID:        rec.ID,
		Document:     rec.Document,
		GraphChanged: replayed.GraphHash != rec.GraphHash,
		RecordedHash: rec.ProgramHash,
		ReplayedHash: replayed.ProgramHash,
		RecordedCode: rec.ErrorCode,
		ReplayedCode: replayed.ErrorCode,
	}
	result.Deterministic = !result.GraphChanged &&
		replayed.Status == rec.Status &&
		replayed.ProgramHash == rec.ProgramHash &&
		replayed.ErrorCode == rec.ErrorCode

	formatter.VerboseLog("Replayed %s: graph %s, program %s", rec.ID, replayed.GraphHash, replayed.ProgramHash)

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		switch {
		case result.GraphChanged:
			fmt.Fprintf(w, "✗ %s: %s changed since the run was recorded\n", rec.ID, rec.Document)
		case result.Deterministic:
			fmt.Fprintf(w, "✓ %s reproduced (%s)\n", rec.ID, rec.Status)
		default:
			fmt.Fprintf(w, "✗ %s differs from the recorded run\n", rec.ID)
			fmt.Fprintf(w, "  recorded: %s %s%s\n", rec.Status, rec.ProgramHash, rec.ErrorCode)
			fmt.Fprintf(w, "  replayed: %s %s%s\n", replayed.Status, replayed.ProgramHash, replayed.ErrorCode)
		}
	}

	if !result.Deterministic {
		return reportedExitError(ExitFailure, fmt.Sprintf("replay of %s did not reproduce", rec.ID))
	}
	return nil
}
