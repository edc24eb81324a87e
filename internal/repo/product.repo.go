package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"sommy-store/internal/domain"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type productRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepo {
	return &productRepo{db: db}
}

const productColumns = `id, name, price, quantity, category, description,
	images, sizes, colors, in_stock, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	images, sizes, colors, err := marshalLists(product)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, price, quantity, category, description,
			images, sizes, colors, in_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		product.ID, product.Name, product.Price, product.Quantity,
		product.Category, product.Description,
		images, sizes, colors, product.InStock,
		product.CreatedAt, product.UpdatedAt,
	)
	return err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	images, sizes, colors, err := marshalLists(product)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE products SET name = $2, price = $3, quantity = $4, category = $5,
			description = $6, images = $7, sizes = $8, colors = $9,
			in_stock = $10, updated_at = $11
		WHERE id = $1`,
		product.ID, product.Name, product.Price, product.Quantity,
		product.Category, product.Description,
		images, sizes, colors, product.InStock, product.UpdatedAt,
	)
	return err
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func marshalLists(p *domain.Product) (images, sizes, colors []byte, err error) {
	if images, err = json.Marshal(emptyIfNil(p.Images)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal images: %w", err)
	}
	if sizes, err = json.Marshal(emptyIfNil(p.Sizes)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal sizes: %w", err)
	}
	if colors, err = json.Marshal(emptyIfNil(p.Colors)); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal colors: %w", err)
	}
	return images, sizes, colors, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product               domain.Product
		images, sizes, colors []byte
	)
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Quantity,
		&product.Category,
		&product.Description,
		&images,
		&sizes,
		&colors,
		&product.InStock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(images, &product.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	if err := json.Unmarshal(sizes, &product.Sizes); err != nil {
		return nil, fmt.Errorf("unmarshal sizes: %w", err)
	}
	if err := json.Unmarshal(colors, &product.Colors); err != nil {
		return nil, fmt.Errorf("unmarshal colors: %w", err)
	}
	return &product, nil
}
