package payments

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/metrics"
	"github.com/shopfront/orders/internal/orders"
)

type OrderStore interface {
	MarkPaid(ctx context.Context, orderID string) (bool, error)
	SetPaymentState(ctx context.Context, orderID string, ps orders.PaymentStatus, st orders.Status) (bool, error)
	Get(ctx context.Context, orderID string) (*orders.Order, error)
}

// StockMutator decrements one product atomically at the storage layer.
type StockMutator interface {
	Decrement(ctx context.Context, productID string, qty int) error
}

type Notifier interface {
	OrderPaid(o *orders.Order)
}

// ReplayFilter short-circuits notifications that were already fully
// processed. Optional: a nil filter (or a failing one) only costs a trip to
// the database guard.
type ReplayFilter interface {
	Seen(ctx context.Context, event, paymentID string) (bool, error)
	MarkSeen(ctx context.Context, event, paymentID string) error
}

// Processor consumes provider notifications and reconciles order state.
// Errors it returns are internal: the webhook transport acknowledges the
// provider regardless, so redelivery is governed by the idempotency guard,
// not by HTTP status codes.
type Processor struct {
	Orders   OrderStore
	Stock    StockMutator
	Replay   ReplayFilter
	Notify   Notifier
	Events   orders.Publisher
	Cache    orders.StatusCache
	Producer string
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

func (p *Processor) Handle(ctx context.Context, n Notification) error {
	orderID := n.OrderID()
	if orderID == "" {
		p.Log.Warn("notification without order id",
			zap.String("event", n.Event),
			zap.String("payment_id", n.Object.ID))
		p.count(n.Event, "no_order_id")
		return nil
	}

	switch n.Event {
	case EventPaymentSucceeded:
		return p.handleSucceeded(ctx, n, orderID)
	case EventPaymentWaiting:
		return p.handleState(ctx, n, orderID, orders.PaymentWaitingCapture, orders.StatusPending)
	case EventPaymentCanceled:
		return p.handleState(ctx, n, orderID, orders.PaymentCanceled, orders.StatusCancelled)
	default:
		p.Log.Warn("unhandled provider event", zap.String("event", n.Event))
		p.count(n.Event, "unhandled")
		return nil
	}
}

func (p *Processor) handleSucceeded(ctx context.Context, n Notification, orderID string) error {
	if p.Replay != nil {
		seen, err := p.Replay.Seen(ctx, n.Event, n.Object.ID)
		if err != nil {
			// Cache miss path is safe; the database guard decides.
			p.Log.Warn("replay filter unavailable", zap.Error(err))
		} else if seen {
			p.Log.Info("duplicate payment confirmation (replay filter)",
				zap.String("order_id", orderID),
				zap.String("payment_id", n.Object.ID))
			p.count(n.Event, "duplicate")
			return nil
		}
	}

	// The sole idempotency guard: whichever delivery's update lands first
	// wins the transition; everyone else sees zero affected rows.
	won, err := p.Orders.MarkPaid(ctx, orderID)
	if err != nil {
		p.count(n.Event, "error")
		return fmt.Errorf("confirm payment for order %s: %w", orderID, err)
	}
	if !won {
		// Zero affected rows means either a redelivery or an order we have
		// never seen; only the former is a duplicate worth counting as one.
		if _, err := p.Orders.Get(ctx, orderID); errors.Is(err, orders.ErrNotFound) {
			p.Log.Warn("payment confirmation for unknown order",
				zap.String("order_id", orderID),
				zap.String("payment_id", n.Object.ID))
			p.count(n.Event, "unknown_order")
			return nil
		}
		p.Log.Info("duplicate payment confirmation",
			zap.String("order_id", orderID),
			zap.String("payment_id", n.Object.ID))
		p.count(n.Event, "duplicate")
		p.markSeen(ctx, n)
		return nil
	}

	if p.Cache != nil {
		p.Cache.Invalidate(ctx, orderID)
	}

	o, err := p.Orders.Get(ctx, orderID)
	if err != nil {
		p.count(n.Event, "error")
		return fmt.Errorf("load paid order %s: %w", orderID, err)
	}

	// Best-effort stock sync: one item failing must not block the rest, and
	// never rolls back the confirmed payment. Failures are logged for manual
	// reconciliation; there is no compensating retry.
	for _, it := range o.Items {
		if err := p.Stock.Decrement(ctx, it.ProductID, it.Qty); err != nil {
			p.Log.Error("stock decrement failed",
				zap.String("order_id", orderID),
				zap.String("product_id", it.ProductID),
				zap.Int("qty", it.Qty),
				zap.Error(err))
			if p.Metrics != nil {
				p.Metrics.StockSyncFailures.Inc()
			}
		}
	}

	p.markSeen(ctx, n)
	p.count(n.Event, "ok")
	p.Log.Info("payment confirmed",
		zap.String("order_id", orderID),
		zap.String("payment_id", n.Object.ID),
		zap.String("total", o.Total.StringFixed(2)))

	if p.Notify != nil {
		p.Notify.OrderPaid(o)
	}
	orders.PublishEvent(p.Events, p.Producer, orders.TopicOrderPaid, orders.EventOrderPaid, orderID,
		orders.OrderPaidPayload{OrderID: orderID, PaymentID: n.Object.ID, Total: o.Total.StringFixed(2)})
	return nil
}

func (p *Processor) handleState(ctx context.Context, n Notification, orderID string, ps orders.PaymentStatus, st orders.Status) error {
	changed, err := p.Orders.SetPaymentState(ctx, orderID, ps, st)
	if err != nil {
		p.count(n.Event, "error")
		return fmt.Errorf("apply %s to order %s: %w", n.Event, orderID, err)
	}
	if !changed {
		p.count(n.Event, "noop")
		return nil
	}
	p.count(n.Event, "ok")
	if p.Cache != nil {
		p.Cache.Invalidate(ctx, orderID)
	}
	p.Log.Info("payment state updated",
		zap.String("order_id", orderID),
		zap.String("payment_status", string(ps)))

	if ps == orders.PaymentCanceled {
		orders.PublishEvent(p.Events, p.Producer, orders.TopicOrderCancelled, orders.EventOrderCancelled, orderID,
			orders.OrderCancelledPayload{OrderID: orderID, Reason: "payment_canceled"})
	}
	return nil
}

func (p *Processor) markSeen(ctx context.Context, n Notification) {
	if p.Replay == nil {
		return
	}
	if err := p.Replay.MarkSeen(ctx, n.Event, n.Object.ID); err != nil {
		p.Log.Warn("replay filter mark failed", zap.Error(err))
	}
}

func (p *Processor) count(event, outcome string) {
	if p.Metrics != nil {
		p.Metrics.PaymentEvents.WithLabelValues(event, outcome).Inc()
	}
}
