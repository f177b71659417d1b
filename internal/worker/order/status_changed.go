package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/cache"
	"github.com/campuswash/laundry/internal/messaging"
	ordersvc "github.com/campuswash/laundry/internal/service/order"
	"github.com/campuswash/laundry/internal/worker"
)

var workerTracer = otel.Tracer("github.com/campuswash/laundry/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewStatusChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewStatusChangedHandler logs order lifecycle events and evicts the order from
// the read cache so other replicas reload it.
func NewStatusChangedHandler(logger *zap.Logger, client messaging.Client, store cache.Store) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.status_changed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.StatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Redelivery cannot fix a malformed payload.
			logger.Error("dropping undecodable order event", zap.Error(err), zap.Int64("offset", msg.Offset))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}
		id, err := uuid.Parse(event.OrderID)
		if err != nil {
			logger.Error("dropping order event with bad id", zap.String("order_id", event.OrderID))
			span.SetStatus(codes.Error, "bad order id")
			return nil
		}
		span.SetAttributes(
			attribute.String("order.id", id.String()),
			attribute.String("order.transition", string(event.Transition)),
		)

		logger.Info("order status changed",
			zap.String("id", event.OrderID),
			zap.String("transition", string(event.Transition)),
			zap.String("status", string(event.Status)),
			zap.Bool("paid", event.Paid),
			zap.String("actor", event.ActorID),
			zap.Time("changed_at", event.ChangedAt),
		)

		if store != nil {
			if err := store.Delete(ctx, ordersvc.CacheKey(id)); err != nil {
				span.RecordError(err)
				return fmt.Errorf("evict order %s: %w", id, err)
			}
		}
		return nil
	}

	return worker.HandlerRegistration{
		Topic:   client.Topic(),
		Handler: handler,
	}
}
