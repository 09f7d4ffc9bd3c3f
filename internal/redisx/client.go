package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	return r.WithTimeout(2 * time.Second)
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// StatusCache drops an order's cached status after a transition so reads do
// not serve stale state for the TTL.
type StatusCache struct {
	R *redis.Client
}

func (c *StatusCache) Invalidate(ctx context.Context, orderID string) {
	if c == nil || c.R == nil {
		return
	}
	_ = c.R.Del(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Err()
}

// Dedup is the fast-path replay filter for provider notifications. It only
// short-circuits redeliveries that were already fully processed; the database
// conditional update stays the authoritative idempotency guard, so a missing
// or unreachable redis never loses an event.
type Dedup struct {
	R *redis.Client
}

func (d *Dedup) Seen(ctx context.Context, event, paymentID string) (bool, error) {
	if d == nil || d.R == nil {
		return false, nil
	}
	return Exists(ctx, d.R, fmt.Sprintf(KeyPaymentSeen, event, paymentID))
}

// MarkSeen is called only after processing completed, never before.
func (d *Dedup) MarkSeen(ctx context.Context, event, paymentID string) error {
	if d == nil || d.R == nil {
		return nil
	}
	return d.R.Set(ctx, fmt.Sprintf(KeyPaymentSeen, event, paymentID), "1", TTLPaymentSeen).Err()
}
