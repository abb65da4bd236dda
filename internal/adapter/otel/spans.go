package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github-integration"

// StartReconcileSpan starts a span for one webhook reconciliation.
func StartReconcileSpan(ctx context.Context, op, owner, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "reconcile",
		trace.WithAttributes(
			attribute.String("reconcile.op", op),
			attribute.String("repository.owner", owner),
			attribute.String("repository.name", name),
		),
	)
}

// StartIngestSpan starts a span for one inbound provider event.
func StartIngestSpan(ctx context.Context, eventType string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ingest",
		trace.WithAttributes(
			attribute.String("event.type", eventType),
		),
	)
}
