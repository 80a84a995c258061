package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shadegraph/internal/pipeline"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool             `json:"valid"`
	Instructions int              `json:"instructions"`
	Warnings     int              `json:"warnings"`
	Diagnostics  []DiagnosticView `json:"diagnostics"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Roots  []string
	Strict bool // treat warnings as failures
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <graph.cue|dir>",
		Short: "Check a node graph without emitting code",
		Long: `Run every compiler pass over a graph document and report its
diagnostics without writing WGSL. Use --strict to fail on warnings too.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Roots, "root", nil, "root node name (repeatable)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat warnings as failures")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	doc, roots, err := loadGraph(path, opts.Roots)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error())
	}

	formatter.VerboseLog("Validating %s from %d root(s)", path, len(roots))

	res, compileErr := pipeline.Compile(cmd.Context(), opts.env(), doc.Graph, roots)

	result := ValidationResult{
		Valid:       compileErr == nil && (!opts.Strict || res.Warnings() == 0),
		Warnings:    res.Warnings(),
		Diagnostics: diagnosticViews(doc, res.Diagnostics),
	}
	if res.Program != nil {
		result.Instructions = res.Program.Len()
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(formatter.Writer, describeDiagnostic(doc, d))
		}
		if result.Valid {
			fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d instruction(s), %d warning(s))\n",
				path, result.Instructions, result.Warnings)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s is invalid\n", path)
		}
	}

	if !result.Valid {
		return reportedExitError(ExitFailure, fmt.Sprintf("validation failed for %s", path))
	}
	return nil
}

// outputValidateError outputs a command-level validation error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return reportedExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
