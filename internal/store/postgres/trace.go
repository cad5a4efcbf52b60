package postgres

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("inkhub/store")

// span starts a tracing span for one table operation.
func (t *Table[T]) span(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("db.table", t.name),
		))
}
