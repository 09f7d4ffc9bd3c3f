package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/metrics"
	"github.com/shopfront/orders/internal/orders"
)

// Dispatcher fans notifications out on their own goroutines. Callers never
// wait on a send and never see its failure; failures go to the log and the
// notification counters only.
type Dispatcher struct {
	Sender      Sender
	AdminEmails []string
	Log         *zap.Logger
	Metrics     *metrics.Metrics
	Timeout     time.Duration

	wg sync.WaitGroup
}

func (d *Dispatcher) OrderCreated(o *orders.Order) {
	d.fanout(TemplateOrderCreated, "New order "+o.ID, d.AdminEmails, o)
}

func (d *Dispatcher) OrderPaid(o *orders.Order) {
	d.fanout(TemplateOrderPaid, "Order "+o.ID+" paid", d.AdminEmails, o)
}

func (d *Dispatcher) OrderShipped(o *orders.Order) {
	d.fanout(TemplateOrderShipped, "Your order has shipped", []string{o.Customer.Email}, o)
}

// Wait blocks until in-flight sends finish. Shutdown only; the request path
// never calls it.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) fanout(template, subject string, recipients []string, o *orders.Order) {
	sum := summarize(o)
	for _, to := range recipients {
		if to == "" {
			continue
		}
		m := Message{To: to, Template: template, Subject: subject, Order: sum}
		d.wg.Add(1)
		go d.send(m)
	}
}

func (d *Dispatcher) send(m Message) {
	defer d.wg.Done()
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := d.Sender.Send(ctx, m); err != nil {
		d.Log.Warn("notification send failed",
			zap.String("template", m.Template),
			zap.String("to", m.To),
			zap.String("order_id", m.Order.OrderID),
			zap.Error(err))
		d.count(m.Template, "failed")
		return
	}
	d.count(m.Template, "sent")
}

func (d *Dispatcher) count(template, outcome string) {
	if d.Metrics != nil {
		d.Metrics.Notifications.WithLabelValues(template, outcome).Inc()
	}
}

func summarize(o *orders.Order) Summary {
	s := Summary{
		OrderID: o.ID,
		Email:   o.Customer.Email,
		Total:   o.Total.StringFixed(2),
	}
	for _, it := range o.Items {
		s.Items = append(s.Items, Line{
			ProductID: it.ProductID,
			Qty:       it.Qty,
			Price:     it.Price.StringFixed(2),
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return s
}
