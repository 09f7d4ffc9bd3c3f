package orders_test

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/shopfront/orders/internal/catalog"
	"github.com/shopfront/orders/internal/orders"
)

type stubCatalog struct {
	snaps map[string]catalog.Snapshot
	err   error
}

func (s *stubCatalog) Snapshot(_ context.Context, ids []string) (map[string]catalog.Snapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[string]catalog.Snapshot{}
	for _, id := range ids {
		if v, ok := s.snaps[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

type stubStore struct {
	created []*orders.Order
	err     error
}

func (s *stubStore) Create(_ context.Context, o *orders.Order) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, o)
	return nil
}

type stubNotifier struct {
	mu      sync.Mutex
	created []string
	shipped []string
}

func (n *stubNotifier) OrderCreated(o *orders.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, o.ID)
}

func (n *stubNotifier) OrderShipped(o *orders.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shipped = append(n.shipped, o.ID)
}

func (n *stubNotifier) shippedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.shipped)
}

type stubPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *stubPublisher) Publish(topic string, _, _ []byte, _ ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *stubPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

type stubAdminStore struct {
	order *orders.Order
}

func (s *stubAdminStore) Get(_ context.Context, orderID string) (*orders.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, orders.ErrNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *stubAdminStore) Transition(_ context.Context, orderID string, from, to orders.Status) (bool, error) {
	if s.order == nil || s.order.ID != orderID || s.order.Status != from {
		return false, nil
	}
	s.order.Status = to
	return true, nil
}
