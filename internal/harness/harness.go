package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/shadegraph/internal/document"
	"github.com/roach88/shadegraph/internal/graph"
	"github.com/roach88/shadegraph/internal/pipeline"
	"github.com/roach88/shadegraph/internal/store"
)

// Harness runs scenarios through the compiler pipeline.
type Harness struct {
	env   pipeline.Env
	store *store.Store
}

// Option configures a Harness.
type Option func(*Harness)

// WithEnv sets the logger and tracer every compilation reports to.
func WithEnv(env pipeline.Env) Option {
	return func(h *Harness) { h.env = env }
}

// WithStore records every run in st.
func WithStore(st *store.Store) Option {
	return func(h *Harness) { h.store = st }
}

// New creates a harness. Without options it discards logs and spans and
// records nothing.
func New(opts ...Option) *Harness {
	h := &Harness{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run loads the scenario's graph, compiles it and evaluates its assertions.
//
// A compilation failure is an outcome, not an error: it is reported in
// Result.Status and checked by assertions. Run returns an error only when
// the scenario cannot be executed at all (unreadable document, unknown
// roots, store failure).
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	doc, err := loadDocument(scenario)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	roots := doc.Roots
	if len(scenario.Roots) > 0 {
		if roots, err = doc.ResolveRoots(scenario.Roots); err != nil {
			return nil, fmt.Errorf("resolve roots: %w", err)
		}
	}

	logger := h.logger().With("scenario", scenario.Name)
	res, compileErr := pipeline.Compile(ctx, h.env, doc.Graph, roots)

	result := NewResult()
	result.Document = doc
	result.Compile = res
	result.Status = StatusOK
	if compileErr != nil {
		result.Status = StatusFailed
		logger.Debug("compilation failed", "error", compileErr)
	}
	result.WGSL = res.WGSL
	if res.Program != nil {
		result.IR = res.Program.String()
	}
	if res.Diagnostics != nil {
		result.Diagnostics = res.Diagnostics
	}

	if h.store != nil {
		rec := store.FromResult(scenarioDocument(scenario), rootNames(doc, roots), res)
		if err := h.store.Record(ctx, rec); err != nil {
			return nil, fmt.Errorf("record run: %w", err)
		}
		result.RunID = rec.ID
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario completed",
		"status", result.Status,
		"pass", result.Pass,
		"diagnostics", len(result.Diagnostics),
	)
	return result, nil
}

func (h *Harness) logger() *slog.Logger {
	if h.env.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.env.Logger
}

func loadDocument(s *Scenario) (*document.Document, error) {
	if s.Source != "" {
		return document.Parse([]byte(s.Source), s.Name+".cue")
	}
	return document.LoadFile(s.Graph)
}

func scenarioDocument(s *Scenario) string {
	if s.Graph != "" {
		return s.Graph
	}
	return "scenario:" + s.Name
}

func rootNames(doc *document.Document, roots []graph.NodeID) []string {
	names := make([]string, len(roots))
	for i, id := range roots {
		names[i] = doc.NodeName(id)
	}
	return names
}
