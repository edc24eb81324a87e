package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"sommy-store/internal/domain"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	FindPendingRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Order, error)
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

const orderColumns = `id, owner_id, items, total, status, order_date,
	dispatch_date, departure_date, delivery_date,
	cancellation_fee, refund_amount, refund_status,
	shipping_address, payment_method, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (id, owner_id, items, total, status, order_date,
			dispatch_date, departure_date, delivery_date,
			cancellation_fee, refund_amount, refund_status,
			shipping_address, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		order.ID, order.OwnerID, items, order.Total, order.Status, order.OrderDate,
		order.DispatchDate, order.DepartureDate, order.DeliveryDate,
		order.CancellationFee, order.RefundAmount, order.RefundStatus,
		order.ShippingAddress, order.PaymentMethod, order.CreatedAt, order.UpdatedAt,
	)
	return err
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE owner_id = $1 ORDER BY order_date DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY order_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE orders SET items = $2, total = $3, status = $4,
			dispatch_date = $5, departure_date = $6, delivery_date = $7,
			cancellation_fee = $8, refund_amount = $9, refund_status = $10,
			updated_at = $11
		WHERE id = $1`,
		order.ID, items, order.Total, order.Status,
		order.DispatchDate, order.DepartureDate, order.DeliveryDate,
		order.CancellationFee, order.RefundAmount, order.RefundStatus,
		order.UpdatedAt,
	)
	return err
}

func (r *orderRepo) FindPendingRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+orderColumns+` FROM orders
		WHERE status = $1 AND refund_status = $2 AND updated_at < $3
		ORDER BY updated_at LIMIT $4`,
		domain.OrderCancelled, domain.RefundPending, time.Now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order domain.Order
		items []byte
	)
	err := row.Scan(
		&order.ID,
		&order.OwnerID,
		&items,
		&order.Total,
		&order.Status,
		&order.OrderDate,
		&order.DispatchDate,
		&order.DepartureDate,
		&order.DeliveryDate,
		&order.CancellationFee,
		&order.RefundAmount,
		&order.RefundStatus,
		&order.ShippingAddress,
		&order.PaymentMethod,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}
