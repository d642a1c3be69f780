package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies the pipeline's spans.
const TracerName = "tabclean.pipeline"

// Tracer provides OpenTelemetry instrumentation for cleaning runs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer bound to the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartRun opens the span covering a whole cleaning run.
func (t *Tracer) StartRun(ctx context.Context, runID string, steps, rows int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.steps", steps),
			attribute.Int("run.rows", rows),
		),
	)
}

// StartStep opens the span for one step execution.
func (t *Tracer) StartStep(ctx context.Context, runID, stepID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "pipeline.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion closes out a step span with its outcome.
func (t *Tracer) RecordStepCompletion(span trace.Span, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step failed")
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordRunCompletion closes out the run span with its outcome.
func (t *Tracer) RecordRunCompletion(span trace.Span, state *RunState, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(state.Status)),
		attribute.Float64("run.duration_seconds", state.Duration().Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		return
	}
	span.SetStatus(codes.Ok, "run completed")
}
