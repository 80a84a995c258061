package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/shadegraph/internal/config"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/observability"
	"github.com/roach88/shadegraph/internal/pipeline"
)

// RootOptions holds global flags for all commands, plus what the root
// command builds from them before a subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *slog.Logger
	Tracer trace.Tracer

	initTracing func(context.Context, *observability.TracingConfig) (*observability.TracerProvider, error)
	tracing     *observability.TracerProvider
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the shadegraph CLI.
// Run it through Execute so tracing is flushed after failed commands too.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

// Execute runs the CLI with args and shuts tracing down afterwards,
// whatever the command returned. Cobra skips post-run hooks once RunE
// fails, so teardown cannot live in one.
func Execute(ctx context.Context, args []string) error {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	return opts.execute(ctx, cmd)
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{initTracing: observability.InitTracing}

	cmd := &cobra.Command{
		Use:     "shadegraph",
		Short:   "shadegraph - node graphs to WGSL",
		Long:    "Compile shader node graphs written as CUE documents into WGSL.",
		Version: ir.CompilerVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd, opts
}

// execute runs cmd and then tears down. A teardown failure only fails a
// command that otherwise succeeded.
func (o *RootOptions) execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)

	if terr := o.teardown(context.WithoutCancel(ctx)); terr != nil {
		if err == nil {
			return WrapExitError(ExitCommandError, "shutting down tracing", terr)
		}
		if o.Logger != nil {
			o.Logger.Warn("shutting down tracing", "error", terr)
		}
	}
	return err
}

// setup loads configuration and builds the logger and tracer. Flags set on
// the command line win over configuration.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading configuration", err)
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") && cfg.Output.Format != "" {
		o.Format = cfg.Output.Format
	}
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), cfg, o.Verbose)
	for _, w := range cfg.Validate() {
		o.Logger.Warn("config", "warning", w)
	}

	initTracing := o.initTracing
	if initTracing == nil {
		initTracing = observability.InitTracing
	}
	tp, err := initTracing(cmd.Context(), &observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: ir.CompilerVersion,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "initializing tracing", err)
	}
	o.tracing = tp
	o.Tracer = tp.Tracer()
	return nil
}

// teardown flushes and stops tracing once; later calls are no-ops.
func (o *RootOptions) teardown(ctx context.Context) error {
	if o.tracing == nil {
		return nil
	}
	tp := o.tracing
	o.tracing = nil
	return tp.Shutdown(ctx)
}

// newLogger builds the stderr logger: debug with --verbose, otherwise the
// configured level; text or JSON records per log.format.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// env returns the pipeline collaborators. Commands built without the root
// command (as in tests) get a silent logger and a no-op tracer.
func (o *RootOptions) env() pipeline.Env {
	return pipeline.Env{Logger: o.Logger, Tracer: o.Tracer}
}

// storePath picks the --db flag over store.path from configuration.
func (o *RootOptions) storePath(flag string) string {
	if flag != "" {
		return flag
	}
	if o.Config != nil {
		return o.Config.Store.Path
	}
	return ""
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
