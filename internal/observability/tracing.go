// Package observability provides OpenTelemetry tracing for compilations.
package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/roach88/shadegraph/internal/ir"
)

const (
	// TracerName is the instrumentation scope of every shadegraph span.
	TracerName = "github.com/roach88/shadegraph"
)

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// ServiceName is the name of the service (default: "shadegraph")
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0, default: 1.0)
	SampleRate float64
}

// DefaultTracingConfig returns a configuration with tracing disabled.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "shadegraph",
		ServiceVersion: ir.CompilerVersion,
		SampleRate:     1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
//
// The provider is never installed globally; callers hand Tracer() to the
// pipeline explicitly.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}

	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
		}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// NewTracerProvider wraps an existing SDK provider, e.g. one exporting to
// an in-process recorder.
func NewTracerProvider(provider *sdktrace.TracerProvider) *TracerProvider {
	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}
}

// Sampler maps a sample rate to a sampler: >= 1 samples everything,
// <= 0 nothing, anything between samples by trace id ratio.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes and stops the exporter. It is a no-op when tracing is disabled.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Span names, one per pipeline stage.
const (
	SpanCompile     = "shadegraph.compile"
	SpanAnalyze     = "shadegraph.analyze"
	SpanTypes       = "shadegraph.types"
	SpanLower       = "shadegraph.lower"
	SpanConversions = "shadegraph.conversions"
	SpanValidate    = "shadegraph.validate"
	SpanEmit        = "shadegraph.emit"
)

// StartCompileSpan starts the root span of one compilation.
func StartCompileSpan(ctx context.Context, tracer trace.Tracer, nodeCount, rootCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanCompile,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("shadegraph.graph.node_count", nodeCount),
			attribute.Int("shadegraph.graph.root_count", rootCount),
		),
	)
}

// StartPassSpan starts a child span for one pass.
func StartPassSpan(ctx context.Context, tracer trace.Tracer, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
}

// RecordCompileResult records the outcome of a compilation on its root span.
func RecordCompileResult(span trace.Span, success bool, instructions, errorCount, warningCount int) {
	span.SetAttributes(
		attribute.Bool("shadegraph.compile.success", success),
		attribute.Int("shadegraph.ir.instruction_count", instructions),
		attribute.Int("shadegraph.compile.error_count", errorCount),
		attribute.Int("shadegraph.compile.warning_count", warningCount),
	)
	if !success {
		span.SetStatus(codes.Error, "compilation failed")
	}
}

// ErrorCoder is implemented by every typed compiler error.
type ErrorCoder interface {
	Code() string
}

// RecordError records an error on a span, including its code when it has one.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	var c ErrorCoder
	if errors.As(err, &c) {
		span.SetAttributes(attribute.String("shadegraph.error.code", c.Code()))
	}
}
