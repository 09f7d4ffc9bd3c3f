package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns every counter the core emits. One instance is built at startup
// and injected; nothing registers against a global registry implicitly.
type Metrics struct {
	reg *prometheus.Registry

	PaymentEvents     *prometheus.CounterVec // event, outcome
	StockSyncFailures prometheus.Counter
	Notifications     *prometheus.CounterVec // template, outcome
	OrdersCreated     prometheus.Counter
	OrdersRejected    *prometheus.CounterVec // reason
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		PaymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orders", Name: "payment_events_total",
			Help: "Provider notifications by event type and outcome.",
		}, []string{"event", "outcome"}),
		StockSyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orders", Name: "stock_sync_failures_total",
			Help: "Per-item stock decrements that failed after payment confirmation.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orders", Name: "notifications_total",
			Help: "Dispatched notifications by template and outcome.",
		}, []string{"template", "outcome"}),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orders", Name: "created_total",
			Help: "Orders persisted by the order creator.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orders", Name: "rejected_total",
			Help: "Checkout rejections by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.PaymentEvents, m.StockSyncFailures, m.Notifications, m.OrdersCreated, m.OrdersRejected)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
