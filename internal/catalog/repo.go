package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("catalog: product not found")

type Repo struct{ DB *pgxpool.Pool }

// Snapshot returns price/stock/availability for the requested ids. Missing
// ids are simply absent from the map; callers treat absence as an invalid item.
func (r *Repo) Snapshot(ctx context.Context, ids []string) (map[string]Snapshot, error) {
	if len(ids) == 0 {
		return map[string]Snapshot{}, nil
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, price, stock, available FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Snapshot, len(ids))
	for rows.Next() {
		var id string
		var s Snapshot
		if err := rows.Scan(&id, &s.Price, &s.Stock, &s.Available); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		out[id] = s
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, price, stock, available, created_at, updated_at
		FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Decrement reduces one product's stock by qty in a single guarded statement
// and clears availability once stock reaches zero or below. The decrement is
// expressed at the storage layer, never as read-modify-write, so concurrent
// confirmations cannot lose updates.
func (r *Repo) Decrement(ctx context.Context, productID string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    available = CASE WHEN stock - $2 <= 0 THEN FALSE ELSE available END,
		    updated_at = now()
		WHERE id = $1`, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}
