package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// Create persists the order and its items in one transaction: neither may
// exist without the other.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, customer_name, customer_email, customer_phone,
			delivery_method, delivery_point_id, address, postal_code,
			payment_method, total, status, payment_status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		o.ID, o.UserID, o.Customer.Name, o.Customer.Email, o.Customer.Phone,
		o.DeliveryMethod, o.DeliveryPointID, o.Address, o.PostalCode,
		o.PaymentMethod, o.Total, o.Status, o.PaymentStatus, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, price, size, color)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Qty, it.Price, it.Size, it.Color)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, customer_name, customer_email, customer_phone,
			delivery_method, delivery_point_id, address, postal_code,
			payment_method, total, status, payment_status, created_at
		FROM orders WHERE id=$1`, orderID).Scan(
		&o.ID, &o.UserID, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.DeliveryMethod, &o.DeliveryPointID, &o.Address, &o.PostalCode,
		&o.PaymentMethod, &o.Total, &o.Status, &o.PaymentStatus, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, qty, price, size, color
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.Qty, &it.Price, &it.Size, &it.Color); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (r *Repo) GetStatus(ctx context.Context, orderID string) (Status, PaymentStatus, error) {
	var s, ps string
	err := r.DB.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE id=$1`, orderID).
		Scan(&s, &ps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	return Status(s), PaymentStatus(ps), nil
}

// MarkPaid is the idempotency guard for payment confirmation: a single
// conditional update whose affected-row count decides whether this delivery
// won the transition. Zero rows means an already-processed duplicate (or an
// unknown order) and the caller must not touch stock or send notifications.
func (r *Repo) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_status=$2, status=$3, updated_at=now()
		WHERE id=$1 AND payment_status <> $2`,
		orderID, PaymentPaid, StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("mark paid: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// SetPaymentState applies waiting_for_capture / canceled transitions with the
// same conditional shape. Paid and canceled are terminal, so the guard also
// refuses to regress out of them.
func (r *Repo) SetPaymentState(ctx context.Context, orderID string, ps PaymentStatus, st Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET payment_status=$2, status=$3, updated_at=now()
		WHERE id=$1 AND payment_status NOT IN ($4, $5) AND payment_status <> $2`,
		orderID, ps, st, PaymentPaid, PaymentCanceled)
	if err != nil {
		return false, fmt.Errorf("set payment state: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Transition moves status only (payment_status untouched), guarded on the
// observed previous status so concurrent admin calls cannot double-apply.
func (r *Repo) Transition(ctx context.Context, orderID string, from, to Status) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2`,
		orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("transition status: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}
