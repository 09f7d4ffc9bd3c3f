package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type AdminStore interface {
	Get(ctx context.Context, orderID string) (*Order, error)
	Transition(ctx context.Context, orderID string, from, to Status) (bool, error)
}

// StatusCache invalidates cached order status after a transition. Optional.
type StatusCache interface {
	Invalidate(ctx context.Context, orderID string)
}

// AdminService applies fulfillment transitions. It only ever moves status;
// payment_status belongs to the payment event processor.
type AdminService struct {
	Store    AdminStore
	Notify   Notifier
	Events   Publisher
	Cache    StatusCache
	Producer string
	Log      *zap.Logger
}

// SetStatus moves one order to the target status. Repeating a call with the
// order's current status is a no-op and triggers no notification; the
// guarded update makes the shipped notification fire once per transition
// even under concurrent calls.
func (s *AdminService) SetStatus(ctx context.Context, orderID string, target Status) (*Order, error) {
	o, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == target {
		return o, nil
	}
	if !CanTransition(o.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	applied, err := s.Store.Transition(ctx, orderID, o.Status, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another transition; caller should re-read.
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
	}
	o.Status = target
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, orderID)
	}
	s.Log.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("status", string(target)))

	switch target {
	case StatusShipped:
		if s.Notify != nil {
			s.Notify.OrderShipped(o)
		}
		PublishEvent(s.Events, s.Producer, TopicOrderShipped, EventOrderShipped, o.ID,
			OrderShippedPayload{OrderID: o.ID})
	case StatusCancelled:
		PublishEvent(s.Events, s.Producer, TopicOrderCancelled, EventOrderCancelled, o.ID,
			OrderCancelledPayload{OrderID: o.ID, Reason: "cancelled_by_admin"})
	}
	return o, nil
}
