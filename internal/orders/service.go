package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/catalog"
	"github.com/shopfront/orders/internal/metrics"
)

type CartItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type CreateInput struct {
	UserID          string
	Customer        Customer
	DeliveryMethod  string
	DeliveryPointID string
	Address         string
	PostalCode      string
	PaymentMethod   string
	Items           []CartItem
}

// SnapshotReader is the inventory read the creator validates against.
type SnapshotReader interface {
	Snapshot(ctx context.Context, ids []string) (map[string]catalog.Snapshot, error)
}

type CreatorStore interface {
	Create(ctx context.Context, o *Order) error
}

// Notifier is fire-and-forget: implementations own their goroutines and never
// return errors to the caller.
type Notifier interface {
	OrderCreated(o *Order)
	OrderShipped(o *Order)
}

type Service struct {
	Store    CreatorStore
	Catalog  SnapshotReader
	Notify   Notifier
	Events   Publisher
	Producer string
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

// Create validates the cart against the current inventory snapshot, computes
// the total from server-side prices only and persists the order with its
// items. Stock is not touched here; it commits at payment confirmation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if len(in.Items) == 0 {
		s.reject("empty_cart")
		return nil, ErrEmptyCart
	}

	snap, err := s.Catalog.Snapshot(ctx, distinctIDs(in.Items))
	if err != nil {
		return nil, fmt.Errorf("inventory snapshot: %w", err)
	}

	var invalid, insufficient []string
	seenInvalid := map[string]bool{}
	seenInsufficient := map[string]bool{}
	for _, it := range in.Items {
		p, ok := snap[it.ProductID]
		if !ok || !p.Available || it.Qty <= 0 {
			if !seenInvalid[it.ProductID] {
				seenInvalid[it.ProductID] = true
				invalid = append(invalid, it.ProductID)
			}
			continue
		}
		if p.Stock <= 0 || it.Qty > p.Stock {
			if !seenInsufficient[it.ProductID] {
				seenInsufficient[it.ProductID] = true
				insufficient = append(insufficient, it.ProductID)
			}
		}
	}
	if len(invalid) > 0 || len(insufficient) > 0 {
		s.reject("unavailable_items")
		return nil, &UnavailableItemsError{InvalidItems: invalid, InsufficientItems: insufficient}
	}

	o := &Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Customer:        in.Customer,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryPointID: in.DeliveryPointID,
		Address:         in.Address,
		PostalCode:      in.PostalCode,
		PaymentMethod:   in.PaymentMethod,
		Total:           decimal.Zero,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		CreatedAt:       time.Now().UTC(),
	}
	for _, it := range in.Items {
		price := snap[it.ProductID].Price
		o.Items = append(o.Items, Item{
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     price,
			Size:      it.Size,
			Color:     it.Color,
		})
		o.Total = o.Total.Add(price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}

	if err := s.Store.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.OrdersCreated.Inc()
	}
	s.Log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("total", o.Total.StringFixed(2)))

	if s.Notify != nil {
		s.Notify.OrderCreated(o)
	}
	PublishEvent(s.Events, s.Producer, TopicOrderCreated, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
		Items:   Lines(o.Items),
		Total:   o.Total.StringFixed(2),
	})

	return o, nil
}

func (s *Service) reject(reason string) {
	if s.Metrics != nil {
		s.Metrics.OrdersRejected.WithLabelValues(reason).Inc()
	}
}

func distinctIDs(items []CartItem) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			out = append(out, it.ProductID)
		}
	}
	return out
}
