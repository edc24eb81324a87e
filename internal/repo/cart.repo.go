package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sommy-store/internal/domain"

	"github.com/google/uuid"
)

type CartRepo interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Cart, error)
	// Upsert writes the full cart document. Last write wins.
	Upsert(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
}

type cartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepo {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Cart, error) {
	var (
		cart  domain.Cart
		items []byte
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT owner_id, items, created_at, updated_at FROM carts WHERE owner_id = $1",
		ownerID,
	).Scan(&cart.OwnerID, &items, &cart.CreatedAt, &cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &cart.Items); err != nil {
		return nil, fmt.Errorf("unmarshal cart items: %w", err)
	}
	return &cart, nil
}

func (r *cartRepo) Upsert(ctx context.Context, cart *domain.Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO carts (owner_id, items, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE SET items = $2, updated_at = $4`,
		cart.OwnerID, items, cart.CreatedAt, cart.UpdatedAt,
	)
	return err
}

func (r *cartRepo) Delete(ctx context.Context, ownerID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE owner_id = $1", ownerID)
	return err
}
