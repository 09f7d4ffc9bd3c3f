package orders_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopfront/orders/internal/orders"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from orders.Status
		to   orders.Status
		want bool
	}{
		{"pending to processing", orders.StatusPending, orders.StatusProcessing, true},
		{"processing to shipped", orders.StatusProcessing, orders.StatusShipped, true},
		{"shipped to delivered", orders.StatusShipped, orders.StatusDelivered, true},
		{"pending to cancelled", orders.StatusPending, orders.StatusCancelled, true},
		{"processing to cancelled", orders.StatusProcessing, orders.StatusCancelled, true},
		{"shipped to cancelled", orders.StatusShipped, orders.StatusCancelled, true},
		{"pending to shipped skips processing", orders.StatusPending, orders.StatusShipped, false},
		{"shipped back to processing", orders.StatusShipped, orders.StatusProcessing, false},
		{"delivered is terminal", orders.StatusDelivered, orders.StatusCancelled, false},
		{"cancelled is terminal", orders.StatusCancelled, orders.StatusProcessing, false},
		{"delivered to delivered", orders.StatusDelivered, orders.StatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orders.CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, orders.StatusDelivered.Terminal())
	assert.True(t, orders.StatusCancelled.Terminal())
	assert.False(t, orders.StatusPending.Terminal())
	assert.False(t, orders.StatusProcessing.Terminal())
	assert.False(t, orders.StatusShipped.Terminal())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, orders.ValidStatus("pending"))
	assert.True(t, orders.ValidStatus("cancelled"))
	assert.False(t, orders.ValidStatus("paid"))
	assert.False(t, orders.ValidStatus(""))
	assert.False(t, orders.ValidStatus("PENDING"))
}
