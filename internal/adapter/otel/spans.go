package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskgate"

// StartSyncSpan starts a span for a sync run.
func StartSyncSpan(ctx context.Context, runID, trigger string, dryRun bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sync",
		trace.WithAttributes(
			attribute.String("sync.run_id", runID),
			attribute.String("sync.trigger", trigger),
			attribute.Bool("sync.dry_run", dryRun),
		),
	)
}

// StartToolSpan starts a span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tool",
		trace.WithAttributes(
			attribute.String("tool.name", tool),
		),
	)
}

// StartWebhookSpan starts a span for an inbound board webhook delivery.
func StartWebhookSpan(ctx context.Context, event string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "webhook",
		trace.WithAttributes(
			attribute.String("webhook.event", event),
		),
	)
}
