package service

import (
	"context"
	"strings"
	"time"

	"sommy-store/internal/apperr"
	"sommy-store/internal/domain"
	"sommy-store/internal/repo"

	"github.com/google/uuid"
)

// ProductInput uses pointers for scalar fields so an omitted field can be
// told apart from an explicit zero: updates only touch what the caller sent.
type ProductInput struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	InStock     *bool    `json:"inStock"`
}

type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products repo.ProductRepo
}

func NewProductService(products repo.ProductRepo) ProductService {
	return &productService{products: products}
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("Product name is required")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperr.Validation("Product price cannot be negative")
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Images:      in.Images,
		Sizes:       in.Sizes,
		Colors:      in.Colors,
		InStock:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Quantity != nil {
		product.Quantity = *in.Quantity
	}
	if in.InStock != nil {
		product.InStock = *in.InStock
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperr.Store(err)
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if product == nil {
		return nil, apperr.NotFound("Not found")
	}
	return product, nil
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return products, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if product == nil {
		return nil, apperr.NotFound("Not found")
	}

	if in.Name != "" {
		if strings.TrimSpace(in.Name) == "" {
			return nil, apperr.Validation("Product name is required")
		}
		product.Name = in.Name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperr.Validation("Product price cannot be negative")
		}
		product.Price = *in.Price
	}
	if in.Quantity != nil {
		product.Quantity = *in.Quantity
	}
	if in.Category != "" {
		product.Category = in.Category
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Images != nil {
		product.Images = in.Images
	}
	if in.Sizes != nil {
		product.Sizes = in.Sizes
	}
	if in.Colors != nil {
		product.Colors = in.Colors
	}
	if in.InStock != nil {
		product.InStock = *in.InStock
	}
	product.UpdatedAt = time.Now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, apperr.Store(err)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return apperr.Store(err)
	}
	if !deleted {
		return apperr.NotFound("Not found")
	}
	return nil
}
