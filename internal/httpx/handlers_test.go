package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/catalog"
	"github.com/shopfront/orders/internal/httpx"
	"github.com/shopfront/orders/internal/orders"
	"github.com/shopfront/orders/internal/payments"
)

type memCatalog struct {
	snaps map[string]catalog.Snapshot
}

func (m *memCatalog) Snapshot(_ context.Context, ids []string) (map[string]catalog.Snapshot, error) {
	out := map[string]catalog.Snapshot{}
	for _, id := range ids {
		if v, ok := m.snaps[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m *memCatalog) List(_ context.Context) ([]catalog.Product, error) {
	return nil, nil
}

type memStore struct {
	mu     sync.Mutex
	orders map[string]*orders.Order
}

func (m *memStore) Create(_ context.Context, o *orders.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orders == nil {
		m.orders = map[string]*orders.Order{}
	}
	m.orders[o.ID] = o
	return nil
}

func (m *memStore) GetStatus(_ context.Context, orderID string) (orders.Status, orders.PaymentStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return "", "", orders.ErrNotFound
	}
	return o.Status, o.PaymentStatus, nil
}

func (m *memStore) MarkPaid(_ context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.PaymentStatus == orders.PaymentPaid {
		return false, nil
	}
	o.PaymentStatus = orders.PaymentPaid
	o.Status = orders.StatusProcessing
	return true, nil
}

func (m *memStore) SetPaymentState(_ context.Context, orderID string, ps orders.PaymentStatus, st orders.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.PaymentStatus == orders.PaymentPaid || o.PaymentStatus == orders.PaymentCanceled {
		return false, nil
	}
	o.PaymentStatus = ps
	o.Status = st
	return true, nil
}

func (m *memStore) Get(_ context.Context, orderID string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type noopStock struct{}

func (noopStock) Decrement(context.Context, string, int) error { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(string, []byte, []byte, ...kafkago.Header) {}

func newTestRouter(snaps map[string]catalog.Snapshot) (*chi.Mux, *memStore) {
	store := &memStore{}
	cat := &memCatalog{snaps: snaps}
	log := zap.NewNop()

	svc := &orders.Service{
		Store:    store,
		Catalog:  cat,
		Events:   noopPublisher{},
		Producer: "test",
		Log:      log,
	}
	proc := &payments.Processor{
		Orders:   store,
		Stock:    noopStock{},
		Events:   noopPublisher{},
		Producer: "test",
		Log:      log,
	}

	r := chi.NewRouter()
	(&httpx.OrdersHandler{Service: svc, Statuses: store, Products: cat, Log: log}).Register(r)
	(&httpx.WebhookHandler{Processor: proc, Log: log}).Register(r)
	return r, store
}

func checkoutBody() string {
	// Client-submitted prices are present and must be ignored.
	return `{
		"user_id": "u1",
		"customer": {"name": "Ada", "email": "ada@example.com"},
		"delivery_method": "courier",
		"address": "1 Main St",
		"payment_method": "card",
		"items": [
			{"product_id": "p1", "qty": 2, "price": "0.01"},
			{"product_id": "p2", "qty": 1, "price": "0.01", "size": "M", "color": "black"}
		]
	}`
}

func TestCreateOrderIgnoresClientPrices(t *testing.T) {
	router, _ := newTestRouter(map[string]catalog.Snapshot{
		"p1": {Price: decimal.RequireFromString("19.90"), Stock: 5, Available: true},
		"p2": {Price: decimal.RequireFromString("5.50"), Stock: 5, Available: true},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(checkoutBody())))

	require.Equal(t, http.StatusCreated, rec.Code)
	var o orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, "45.3", o.Total.String()) // 2*19.90 + 5.50
	assert.Equal(t, orders.StatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "19.9", o.Items[0].Price.String())
}

func TestCreateOrderUnavailableItems(t *testing.T) {
	router, _ := newTestRouter(map[string]catalog.Snapshot{
		"p1": {Price: decimal.RequireFromString("19.90"), Stock: 1, Available: true},
		"p2": {Price: decimal.RequireFromString("5.50"), Stock: 5, Available: false},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(checkoutBody())))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp struct {
		InvalidItems      []string `json:"invalid_items"`
		InsufficientItems []string `json:"insufficient_items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"p2"}, resp.InvalidItems)
	assert.Equal(t, []string{"p1"}, resp.InsufficientItems)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	router, _ := newTestRouter(nil)

	body := `{"user_id":"u1","customer":{"email":"a@b.c"},"payment_method":"card","items":[]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderStatus(t *testing.T) {
	router, store := newTestRouter(map[string]catalog.Snapshot{
		"p1": {Price: decimal.RequireFromString("19.90"), Stock: 5, Available: true},
		"p2": {Price: decimal.RequireFromString("5.50"), Stock: 5, Available: true},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(checkoutBody())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, store.orders[created.ID])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "pending", status["status"])
	assert.Equal(t, "pending", status["payment_status"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookAlwaysAcks(t *testing.T) {
	router, _ := newTestRouter(map[string]catalog.Snapshot{
		"p1": {Price: decimal.RequireFromString("19.90"), Stock: 5, Available: true},
		"p2": {Price: decimal.RequireFromString("5.50"), Stock: 5, Available: true},
	})

	// Garbage body: still acked.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown order: still acked.
	body := `{"event":"payment.succeeded","object":{"id":"pay-1","status":"succeeded","metadata":{"order_id":"ghost"}}}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookConfirmsPayment(t *testing.T) {
	router, store := newTestRouter(map[string]catalog.Snapshot{
		"p1": {Price: decimal.RequireFromString("19.90"), Stock: 5, Available: true},
		"p2": {Price: decimal.RequireFromString("5.50"), Stock: 5, Available: true},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(checkoutBody())))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	body := `{"event":"payment.succeeded","object":{"id":"pay-1","status":"succeeded","metadata":{"order_id":"` + created.ID + `"}}}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	o := store.orders[created.ID]
	assert.Equal(t, orders.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, orders.StatusProcessing, o.Status)
}
