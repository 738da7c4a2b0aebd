// Package service implements the application services on top of the
// database, message queue, and cache ports.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/LCoppers-Cloud/Vehix-sub002/internal/adapter/ws"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/middleware"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/port/messagequeue"
	"github.com/LCoppers-Cloud/Vehix-sub002/internal/resilience"
)

const publishTimeout = 5 * time.Second

// Notifier fans fleet events out to NATS and the WebSocket hub after a
// core operation commits. Publishing is strictly fire-and-forget: a
// failure is logged and counted by the breaker, never returned to the
// caller. Both queue and hub may be nil (tests, CLI).
type Notifier struct {
	queue   messagequeue.Queue
	hub     *ws.Hub
	breaker *resilience.Breaker
}

// NewNotifier creates a notifier. The breaker stops hammering NATS while
// it is down; the hub is unaffected by it.
func NewNotifier(queue messagequeue.Queue, hub *ws.Hub) *Notifier {
	return &Notifier{
		queue:   queue,
		hub:     hub,
		breaker: resilience.NewBreaker(5, 30*time.Second),
	}
}

// Publish emits the event on the given NATS subject and mirrors it to the
// tenant's WebSocket clients. The tenant is taken from ctx.
func (n *Notifier) Publish(ctx context.Context, subject, wsEventType string, payload any) {
	if n == nil {
		return
	}
	tenantID := middleware.TenantIDFromContext(ctx)

	if n.queue != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			slog.Error("marshal event", "subject", subject, "error", err)
			return
		}
		// Detach from the request context: the operation already
		// committed and cancellation must not lose the event.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		err = n.breaker.Execute(func() error {
			return n.queue.Publish(pubCtx, subject, data)
		})
		if err != nil {
			slog.Warn("event publish failed", "subject", subject, "error", err)
		}
	}

	if n.hub != nil && wsEventType != "" {
		n.hub.BroadcastEvent(ctx, tenantID, wsEventType, payload)
	}
}

// Healthy reports whether the NATS side of the notifier is accepting
// publishes.
func (n *Notifier) Healthy() bool {
	return n == nil || n.breaker.Healthy()
}
