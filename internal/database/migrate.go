package database

import (
	"context"
	"database/sql"
)

// Carts and orders keep their line items as JSONB so that a cart mutation or
// an order update is a single-row, all-or-nothing write.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS password_resets (
	token TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	expires TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL DEFAULT 0,
	quantity INT NOT NULL DEFAULT 0,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	images JSONB NOT NULL DEFAULT '[]',
	sizes JSONB NOT NULL DEFAULT '[]',
	colors JSONB NOT NULL DEFAULT '[]',
	in_stock BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS carts (
	owner_id UUID PRIMARY KEY,
	items JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	owner_id UUID NOT NULL,
	items JSONB NOT NULL,
	total DOUBLE PRECISION NOT NULL,
	status TEXT NOT NULL,
	order_date TIMESTAMPTZ NOT NULL,
	dispatch_date TIMESTAMPTZ,
	departure_date TIMESTAMPTZ,
	delivery_date TIMESTAMPTZ,
	cancellation_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
	refund_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	refund_status TEXT NOT NULL DEFAULT 'none',
	shipping_address TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_owner_date ON orders (owner_id, order_date DESC);
`

// Migrate applies the schema. Every statement is idempotent, so it is safe to
// run on every boot.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
