package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Customer        Customer        `json:"customer"`
	DeliveryMethod  string          `json:"delivery_method"`
	DeliveryPointID string          `json:"delivery_point_id,omitempty"`
	Address         string          `json:"address,omitempty"`
	PostalCode      string          `json:"postal_code,omitempty"`
	PaymentMethod   string          `json:"payment_method"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []Item          `json:"items"`
}

// Item is one product line. Price is the per-unit snapshot taken at order
// creation; later catalog price changes never move a placed order's total.
type Item struct {
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}
