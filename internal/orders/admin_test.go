package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/orders"
)

func newAdmin(o *orders.Order) (*orders.AdminService, *stubAdminStore, *stubNotifier, *stubPublisher) {
	store := &stubAdminStore{order: o}
	notifier := &stubNotifier{}
	pub := &stubPublisher{}
	svc := &orders.AdminService{
		Store:    store,
		Notify:   notifier,
		Events:   pub,
		Producer: "test",
		Log:      zap.NewNop(),
	}
	return svc, store, notifier, pub
}

func processingOrder() *orders.Order {
	return &orders.Order{
		ID:            "o1",
		Customer:      orders.Customer{Email: "ada@example.com"},
		Status:        orders.StatusProcessing,
		PaymentStatus: orders.PaymentPaid,
	}
}

func TestAdminShippedNotifiesOnce(t *testing.T) {
	svc, store, notifier, pub := newAdmin(processingOrder())

	o, err := svc.SetStatus(context.Background(), "o1", orders.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusShipped, o.Status)
	assert.Equal(t, 1, notifier.shippedCount())
	assert.Equal(t, []string{orders.TopicOrderShipped}, pub.published())

	// Same target again: no-op, no second notification.
	o, err = svc.SetStatus(context.Background(), "o1", orders.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusShipped, o.Status)
	assert.Equal(t, 1, notifier.shippedCount())
	assert.Equal(t, []string{orders.TopicOrderShipped}, pub.published())
	assert.Equal(t, orders.StatusShipped, store.order.Status)
}

func TestAdminCancelLeavesPaymentStatusAlone(t *testing.T) {
	svc, store, notifier, pub := newAdmin(processingOrder())

	o, err := svc.SetStatus(context.Background(), "o1", orders.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, o.Status)
	assert.Equal(t, orders.PaymentPaid, store.order.PaymentStatus)
	assert.Equal(t, 0, notifier.shippedCount())
	assert.Equal(t, []string{orders.TopicOrderCancelled}, pub.published())
}

func TestAdminRejectsInvalidTransition(t *testing.T) {
	tests := []struct {
		name   string
		from   orders.Status
		target orders.Status
	}{
		{"pending cannot skip to shipped", orders.StatusPending, orders.StatusShipped},
		{"shipped cannot regress", orders.StatusShipped, orders.StatusProcessing},
		{"delivered is terminal", orders.StatusDelivered, orders.StatusCancelled},
		{"cancelled is terminal", orders.StatusCancelled, orders.StatusProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := processingOrder()
			o.Status = tt.from
			svc, _, notifier, _ := newAdmin(o)

			_, err := svc.SetStatus(context.Background(), "o1", tt.target)
			assert.ErrorIs(t, err, orders.ErrInvalidTransition)
			assert.Equal(t, 0, notifier.shippedCount())
		})
	}
}

func TestAdminUnknownOrder(t *testing.T) {
	svc, _, _, _ := newAdmin(processingOrder())

	_, err := svc.SetStatus(context.Background(), "nope", orders.StatusShipped)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestAdminForwardProgression(t *testing.T) {
	o := processingOrder()
	o.Status = orders.StatusPending
	svc, store, _, _ := newAdmin(o)

	for _, target := range []orders.Status{
		orders.StatusProcessing, orders.StatusShipped, orders.StatusDelivered,
	} {
		_, err := svc.SetStatus(context.Background(), "o1", target)
		require.NoError(t, err)
	}
	assert.Equal(t, orders.StatusDelivered, store.order.Status)
}
