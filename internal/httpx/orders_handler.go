package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/catalog"
	"github.com/shopfront/orders/internal/orders"
	"github.com/shopfront/orders/internal/redisx"
)

type CreateOrderReq struct {
	UserID          string            `json:"user_id"`
	Customer        orders.Customer   `json:"customer"`
	DeliveryMethod  string            `json:"delivery_method"`
	DeliveryPointID string            `json:"delivery_point_id"`
	Address         string            `json:"address"`
	PostalCode      string            `json:"postal_code"`
	PaymentMethod   string            `json:"payment_method"`
	Items           []orders.CartItem `json:"items"`
}

type StatusReader interface {
	GetStatus(ctx context.Context, orderID string) (orders.Status, orders.PaymentStatus, error)
}

type ProductLister interface {
	List(ctx context.Context) ([]catalog.Product, error)
}

type OrdersHandler struct {
	Service  *orders.Service
	Statuses StatusReader
	Products ProductLister
	Redis    *redis.Client
	Log      *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/products", h.listProducts)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Customer.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, orders.CreateInput{
		UserID:          req.UserID,
		Customer:        req.Customer,
		DeliveryMethod:  req.DeliveryMethod,
		DeliveryPointID: req.DeliveryPointID,
		Address:         req.Address,
		PostalCode:      req.PostalCode,
		PaymentMethod:   req.PaymentMethod,
		Items:           req.Items,
	})
	if err != nil {
		var unavailable *orders.UnavailableItemsError
		switch {
		case errors.Is(err, orders.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		case errors.As(err, &unavailable):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":              "items unavailable",
				"invalid_items":      emptyIfNil(unavailable.InvalidItems),
				"insufficient_items": emptyIfNil(unavailable.InsufficientItems),
			})
		default:
			h.Log.Error("create order failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	// Warm the status cache so the storefront's immediate poll hits redis.
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
		body, _ := json.Marshal(map[string]string{
			"status": string(o.Status), "payment_status": string(o.PaymentStatus),
		})
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	status, payStatus, err := h.Statuses.GetStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		h.Log.Error("get order failed", zap.String("order_id", orderID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	body, _ := json.Marshal(map[string]string{
		"status": string(status), "payment_status": string(payStatus),
	})
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Products.List(ctx)
	if err != nil {
		h.Log.Error("list products failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
