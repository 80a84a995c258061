package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/shadegraph/internal/document"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/pipeline"
	"github.com/roach88/shadegraph/internal/store"
)

// Emit targets for the compile command.
const (
	EmitWGSL = "wgsl"
	EmitIR   = "ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Roots  []string // root node names, overriding the document's roots
	Output string   // output file path
	Emit   string   // "wgsl" | "ir"
	DB     string   // compilation history database
}

// CompileOutput is the JSON payload of a compile run.
type CompileOutput struct {
	Document     string           `json:"document"`
	Roots        []string         `json:"roots"`
	GraphHash    string           `json:"graph_hash"`
	ProgramHash  string           `json:"program_hash,omitempty"`
	Instructions int              `json:"instructions"`
	Conversions  int              `json:"conversions"`
	Emit         string           `json:"emit"`
	Code         string           `json:"code,omitempty"`
	Output       string           `json:"output,omitempty"`
	RunID        string           `json:"run_id,omitempty"`
	Diagnostics  []DiagnosticView `json:"diagnostics"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <graph.cue|dir>",
		Short: "Compile a node graph to WGSL",
		Long: `Compile a CUE graph document to a WGSL function body.

The document is analyzed from its roots, type-checked, lowered to IR
with implicit conversions made explicit, validated and emitted.
Use --emit ir to print the IR listing instead of WGSL.

Exit codes:
  0 - Compiled (warnings allowed)
  1 - The graph does not compile
  2 - Command error (unreadable document, unknown root, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Roots, "root", nil, "root node name (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Emit, "emit", EmitWGSL, "what to emit (wgsl|ir)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this history database")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Emit != EmitWGSL && opts.Emit != EmitIR {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid --emit %q: must be wgsl or ir", opts.Emit))
	}

	doc, roots, err := loadGraph(path, opts.Roots)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	formatter.VerboseLog("Loaded %s: %d node(s), %d link(s), %d root(s)",
		path, doc.Graph.NodeCount(), doc.Graph.LinkCount(), len(roots))

	res, compileErr := pipeline.Compile(cmd.Context(), opts.env(), doc.Graph, roots)

	out := &CompileOutput{
		Document:    path,
		Roots:       rootNamesOf(doc, roots),
		GraphHash:   res.GraphHash,
		ProgramHash: res.ProgramHash,
		Emit:        opts.Emit,
		Diagnostics: diagnosticViews(doc, res.Diagnostics),
	}
	if res.Program != nil {
		out.Instructions = res.Program.Len()
		out.Conversions = res.Program.CountConverts()
	}

	if dbPath := opts.storePath(opts.DB); dbPath != "" {
		id, err := recordCompilation(cmd.Context(), dbPath, out.Document, out.Roots, res)
		if err != nil {
			return outputCompileError(formatter, ErrCodeStoreFailed, fmt.Sprintf("recording compilation: %v", err))
		}
		out.RunID = id
		formatter.VerboseLog("Recorded run %s in %s", id, dbPath)
	}

	if compileErr != nil {
		return outputCompileFailure(formatter, doc, out, res)
	}

	out.Code = res.WGSL
	if opts.Emit == EmitIR {
		out.Code = res.Program.String()
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(out.Code), 0644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		out.Output = opts.Output
	}

	return outputCompileSuccess(formatter, doc, out, res)
}

// recordCompilation appends the run to the history database and returns
// its id.
func recordCompilation(ctx context.Context, dbPath, doc string, roots []string, res *pipeline.Result) (string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	rec := store.FromResult(doc, roots, res)
	if err := st.Record(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func rootNamesOf(doc *document.Document, roots []graph.NodeID) []string {
	names := make([]string, len(roots))
	for i, id := range roots {
		names[i] = doc.NodeName(id)
	}
	return names
}

// outputCompileSuccess prints the emitted code, or a summary when it went
// to a file. Diagnostics go to stderr in text mode so stdout stays valid
// WGSL.
func outputCompileSuccess(formatter *OutputFormatter, doc *document.Document, out *CompileOutput, res *pipeline.Result) error {
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintln(formatter.GetErrWriter(), describeDiagnostic(doc, d))
	}

	if out.Output == "" {
		fmt.Fprint(formatter.Writer, out.Code)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %s: %d instruction(s), %d conversion(s), %d warning(s)\n",
		out.Document, out.Instructions, out.Conversions, res.Warnings())
	fmt.Fprintf(formatter.Writer, "Wrote %s to %s\n", out.Emit, out.Output)
	return nil
}

// outputCompileFailure reports a graph that does not compile.
func outputCompileFailure(formatter *OutputFormatter, doc *document.Document, out *CompileOutput, res *pipeline.Result) error {
	failure := res.Diagnostics[len(res.Diagnostics)-1]

	if formatter.Format == "json" {
		_ = formatter.Error(failure.Code, failure.Message, out)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
		fmt.Fprintln(formatter.Writer)
		for _, d := range res.Diagnostics {
			fmt.Fprintf(formatter.Writer, "  %s\n", describeDiagnostic(doc, d))
		}
	}

	// The graph itself is wrong: a failure, not a command error
	return reportedExitError(ExitFailure, fmt.Sprintf("%s: %s", failure.Code, failure.Message))
}

// outputCompileError outputs a single command-level error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return reportedExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
