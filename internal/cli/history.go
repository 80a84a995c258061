package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB       string
	Limit    int
	Graph    string // graph hash: show its latest compilation
	Status   string // list only "ok" or "failed" runs
	Document string // list only runs of this document
}

// CompilationView is the JSON form of a recorded compilation.
type CompilationView struct {
	ID               string                  `json:"id"`
	Seq              int64                   `json:"seq"`
	Document         string                  `json:"document"`
	Roots            []string                `json:"roots"`
	Status           string                  `json:"status"`
	ErrorCode        string                  `json:"error_code,omitempty"`
	GraphHash        string                  `json:"graph_hash"`
	ProgramHash      string                  `json:"program_hash,omitempty"`
	InstructionCount int                     `json:"instruction_count"`
	ConvertCount     int                     `json:"convert_count"`
	CompilerVersion  string                  `json:"compiler_version"`
	CreatedAt        string                  `json:"created_at"`
	WGSL             string                  `json:"wgsl,omitempty"`
	Diagnostics      []diagnostic.Diagnostic `json:"diagnostics,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded compilations",
		Long: `List compilations recorded with --db, newest first, or show one
run in full including its diagnostics and WGSL.

Examples:
  shadegraph history --db runs.db
  shadegraph history --db runs.db --limit 5
  shadegraph history --db runs.db --status failed
  shadegraph history --db runs.db 0192f0c1-...
  shadegraph history --db runs.db --graph <graph-hash>`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runHistory(opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database (defaults to store.path)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Graph, "graph", "", "show the latest run of this graph hash")
	cmd.Flags().StringVar(&opts.Status, "status", "", "list only runs with this status (ok|failed)")
	cmd.Flags().StringVar(&opts.Document, "document", "", "list only runs of this document")

	return cmd
}

func runHistory(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	status := store.Status(opts.Status)
	if status != "" && status != store.StatusOK && status != store.StatusFailed {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid --status %q: must be ok or failed", opts.Status))
	}

	dbPath := opts.storePath(opts.DB)
	if dbPath == "" {
		return outputCompileError(formatter, ErrCodeStoreFailed, "no history database: pass --db or set store.path")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening %s: %v", dbPath, err))
	}
	defer st.Close()

	ctx := cmd.Context()
	var c *store.Compilation
	switch {
	case id != "":
		c, err = st.Get(ctx, id)
	case opts.Graph != "":
		c, err = st.Latest(ctx, opts.Graph)
	default:
		runs, err := st.Find(ctx, store.Filter{
			Status:   status,
			Document: opts.Document,
			Limit:    opts.Limit,
		})
		if err != nil {
			return outputCompileError(formatter, ErrCodeStoreFailed, err.Error())
		}
		return outputHistoryList(formatter, runs)
	}

	if errors.Is(err, store.ErrNotFound) {
		return outputCompileError(formatter, ErrCodeNotFound, err.Error())
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStoreFailed, err.Error())
	}
	return outputHistoryRun(formatter, c)
}

func compilationView(c *store.Compilation, full bool) CompilationView {
	v := CompilationView{
		ID:               c.ID,
		Seq:              c.Seq,
		Document:         c.Document,
		Roots:            c.Roots,
		Status:           string(c.Status),
		ErrorCode:        c.ErrorCode,
		GraphHash:        c.GraphHash,
		ProgramHash:      c.ProgramHash,
		InstructionCount: c.InstructionCount,
		ConvertCount:     c.ConvertCount,
		CompilerVersion:  c.CompilerVersion,
		CreatedAt:        c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if full {
		v.WGSL = c.WGSL
		v.Diagnostics = c.Diagnostics
	}
	return v
}

func outputHistoryList(formatter *OutputFormatter, runs []store.Compilation) error {
	if formatter.Format == "json" {
		views := make([]CompilationView, 0, len(runs))
		for i := range runs {
			views = append(views, compilationView(&runs[i], false))
		}
		return formatter.Success(views)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No compilations recorded.")
		return nil
	}
	for _, c := range runs {
		mark := "✓"
		if c.Status == store.StatusFailed {
			mark = "✗"
		}
		fmt.Fprintf(formatter.Writer, "%s %4d  %s  %s  %s", mark, c.Seq, c.ID,
			c.CreatedAt.UTC().Format(time.RFC3339), c.Document)
		if c.ErrorCode != "" {
			fmt.Fprintf(formatter.Writer, "  [%s]", c.ErrorCode)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func outputHistoryRun(formatter *OutputFormatter, c *store.Compilation) error {
	if formatter.Format == "json" {
		return formatter.Success(compilationView(c, true))
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run:       %s (#%d)\n", c.ID, c.Seq)
	fmt.Fprintf(w, "Document:  %s\n", c.Document)
	fmt.Fprintf(w, "Roots:     %v\n", c.Roots)
	fmt.Fprintf(w, "Status:    %s\n", c.Status)
	fmt.Fprintf(w, "Graph:     %s\n", c.GraphHash)
	if c.ProgramHash != "" {
		fmt.Fprintf(w, "Program:   %s (%d instruction(s), %d conversion(s))\n", c.ProgramHash, c.InstructionCount, c.ConvertCount)
	}
	fmt.Fprintf(w, "Compiler:  %s (IR %s)\n", c.CompilerVersion, c.IRVersion)
	fmt.Fprintf(w, "Recorded:  %s\n", c.CreatedAt.UTC().Format(time.RFC3339))
	for _, d := range c.Diagnostics {
		fmt.Fprintf(w, "  %s\n", d)
	}
	if c.WGSL != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, c.WGSL)
	}
	return nil
}
