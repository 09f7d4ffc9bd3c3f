package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id         TEXT PRIMARY KEY,
		sku        TEXT UNIQUE NOT NULL,
		name       TEXT NOT NULL,
		price      NUMERIC(12,2) NOT NULL,
		stock      INT NOT NULL DEFAULT 0,
		available  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		customer_name     TEXT NOT NULL,
		customer_email    TEXT NOT NULL,
		customer_phone    TEXT NOT NULL DEFAULT '',
		delivery_method   TEXT NOT NULL,
		delivery_point_id TEXT NOT NULL DEFAULT '',
		address           TEXT NOT NULL DEFAULT '',
		postal_code       TEXT NOT NULL DEFAULT '',
		payment_method    TEXT NOT NULL,
		total             NUMERIC(12,2) NOT NULL,
		status            TEXT NOT NULL DEFAULT 'pending',
		payment_status    TEXT NOT NULL DEFAULT 'pending',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGSERIAL PRIMARY KEY,
		order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		qty        INT NOT NULL,
		price      NUMERIC(12,2) NOT NULL,
		size       TEXT NOT NULL DEFAULT '',
		color      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id)`,
}

// EnsureSchema applies the DDL at startup. Statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
