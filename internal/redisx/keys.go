package redisx

import "time"

const (
	// Cache of order status for reads: order:status:{order_id} -> JSON
	KeyOrderStatus = "order:status:%s"

	// Fast-path dedup of provider notifications: payments:seen:{event}:{payment_id}
	KeyPaymentSeen = "payments:seen:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLPaymentSeen = 48 * time.Hour
)
