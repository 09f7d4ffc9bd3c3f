package payments

// Provider events delivered to the webhook. At-least-once, possibly
// duplicated, possibly out of order.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentWaiting   = "payment.waiting_for_capture"
	EventPaymentCanceled  = "payment.canceled"
)

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type PaymentObject struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   Amount            `json:"amount"`
	Metadata map[string]string `json:"metadata"`
}

// Notification is the inbound webhook body. The order id travels in the
// payment's metadata, set when the payment was initiated.
type Notification struct {
	Event  string        `json:"event"`
	Object PaymentObject `json:"object"`
}

func (n Notification) OrderID() string {
	return n.Object.Metadata["order_id"]
}
