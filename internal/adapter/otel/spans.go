package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "vehix"

// StartTransferSpan starts a span for a stock transfer.
func StartTransferSpan(ctx context.Context, from, to, itemID string, quantity int64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "stock.transfer",
		trace.WithAttributes(
			attribute.String("stock.from", from),
			attribute.String("stock.to", to),
			attribute.String("stock.item_id", itemID),
			attribute.Int64("stock.quantity", quantity),
		),
	)
}

// StartAssignmentSpan starts a span for an assignment mutation.
func StartAssignmentSpan(ctx context.Context, op, vehicleID, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "assignment."+op,
		trace.WithAttributes(
			attribute.String("assignment.vehicle_id", vehicleID),
			attribute.String("assignment.user_id", userID),
		),
	)
}

// StartAuditSpan starts a span for one integrity audit run.
func StartAuditSpan(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "integrity.audit")
}
