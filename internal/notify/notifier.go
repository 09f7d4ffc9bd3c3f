package notify

import "context"

const (
	TemplateOrderCreated = "order_created"
	TemplateOrderPaid    = "order_paid"
	TemplateOrderShipped = "order_shipped"
)

type Line struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Price     string `json:"price"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type Summary struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
	Total   string `json:"total"`
	Items   []Line `json:"items"`
}

type Message struct {
	To       string  `json:"to"`
	Template string  `json:"template"`
	Subject  string  `json:"subject"`
	Order    Summary `json:"order"`
}

// Sender is the external mail collaborator: one send, no retries owned here.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
