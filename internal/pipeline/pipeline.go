// Package pipeline runs the full compilation of a graph: analysis, type
// propagation, lowering, conversion insertion, validation and WGSL emission.
//
// The pipeline stops at the first failing stage and never emits partial
// WGSL. Diagnostics are collected on the side, including for a failed run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/shadegraph/internal/analysis"
	"github.com/roach88/shadegraph/internal/compiler"
	"github.com/roach88/shadegraph/internal/diagnostic"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/ir"
	"github.com/roach88/shadegraph/internal/observability"
	"github.com/roach88/shadegraph/internal/wgsl"
)

// Env carries the collaborators a compilation reports to. The zero value
// discards logs and spans.
type Env struct {
	Logger *slog.Logger
	Tracer trace.Tracer
}

func (e Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e Env) tracer() trace.Tracer {
	if e.Tracer == nil {
		return noop.NewTracerProvider().Tracer(observability.TracerName)
	}
	return e.Tracer
}

// Result is the outcome of one compilation. Fields are filled as far as the
// pipeline got: on failure WGSL is empty and later stages' fields are nil.
type Result struct {
	View    *analysis.GraphView
	Types   compiler.TypeMap
	Program *ir.Program
	Origins compiler.Origins
	WGSL    string

	GraphHash   string
	ProgramHash string

	// Diagnostics holds warnings and, on failure, exactly one error.
	Diagnostics []diagnostic.Diagnostic
}

// Failed reports whether the compilation stopped with an error.
func (r *Result) Failed() bool {
	return diagnostic.HasErrors(r.Diagnostics)
}

// Warnings counts warning diagnostics.
func (r *Result) Warnings() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostic.SeverityWarning {
			n++
		}
	}
	return n
}

// Compile runs every stage over g for roots.
//
// The returned Result is never nil. When a stage fails, its typed error is
// returned wrapped with the stage name, and Result.Diagnostics ends with the
// translated error.
//
// ctx only carries span context; nothing in the pipeline blocks.
// g must not be mutated while Compile runs; use Store.Clone for concurrent
// editing.
func Compile(ctx context.Context, env Env, g *graph.Store, roots []graph.NodeID) (*Result, error) {
	log := env.logger()
	tracer := env.tracer()
	res := &Result{}

	ctx, span := observability.StartCompileSpan(ctx, tracer, g.NodeCount(), len(roots))
	defer span.End()

	err := res.run(ctx, tracer, log, g, roots)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, diagnostic.FromError(err))
		observability.RecordError(span, err)
		log.Debug("compilation failed", "error", err)
	}
	observability.RecordCompileResult(span, err == nil, res.Program.Len(), boolToInt(err != nil), res.Warnings())
	return res, err
}

func (res *Result) run(ctx context.Context, tracer trace.Tracer, log *slog.Logger, g *graph.Store, roots []graph.NodeID) error {
	hash, err := g.Hash()
	if err != nil {
		return fmt.Errorf("hash graph: %w", err)
	}
	res.GraphHash = hash

	err = pass(ctx, tracer, observability.SpanAnalyze, func() error {
		view, err := analysis.BuildGraphView(g, roots)
		if err != nil {
			return err
		}
		res.View = view
		res.Diagnostics = append(res.Diagnostics, diagnostic.Unreachable(view)...)
		res.Diagnostics = append(res.Diagnostics, diagnostic.Defaults(view)...)
		log.Debug("graph analyzed",
			"nodes", len(view.TopoOrder),
			"reachable", len(view.Reachable),
			"roots", len(view.Roots))
		return nil
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	err = pass(ctx, tracer, observability.SpanTypes, func() error {
		types, err := compiler.PropagateTypes(res.View)
		res.Types = types
		return err
	})
	if err != nil {
		return fmt.Errorf("propagate types: %w", err)
	}
	log.Debug("types propagated", "sockets", len(res.Types))

	var (
		lowered *ir.Program
		origins compiler.Origins
	)
	err = pass(ctx, tracer, observability.SpanLower, func() error {
		var err error
		lowered, origins, err = compiler.LowerWithOrigins(res.View, res.Types)
		return err
	})
	if err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	log.Debug("lowered to IR", "instructions", lowered.Len())

	err = pass(ctx, tracer, observability.SpanConversions, func() error {
		converted, located, err := compiler.InsertConversionsWithOrigins(lowered, origins)
		if err != nil {
			return err
		}
		res.Program = converted
		res.Origins = located
		res.Diagnostics = append(res.Diagnostics, diagnostic.Conversions(converted, located)...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert conversions: %w", err)
	}
	log.Debug("conversions inserted",
		"converts", res.Program.CountConverts(),
		"instructions", res.Program.Len())

	err = pass(ctx, tracer, observability.SpanValidate, func() error {
		return compiler.ValidateIR(res.Program)
	})
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	_, emitSpan := observability.StartPassSpan(ctx, tracer, observability.SpanEmit)
	res.WGSL = wgsl.Emit(res.Program)
	emitSpan.End()

	phash, err := ir.ProgramHash(res.Program)
	if err != nil {
		return fmt.Errorf("hash program: %w", err)
	}
	res.ProgramHash = phash

	log.Info("compiled",
		"instructions", res.Program.Len(),
		"warnings", res.Warnings(),
		"program_hash", phash)
	return nil
}

// pass runs fn inside a child span and records its error there.
func pass(ctx context.Context, tracer trace.Tracer, name string, fn func() error) error {
	_, span := observability.StartPassSpan(ctx, tracer, name)
	defer span.End()

	err := fn()
	observability.RecordError(span, err)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
