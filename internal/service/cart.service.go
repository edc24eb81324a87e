package service

import (
	"context"
	"time"

	"sommy-store/internal/apperr"
	"sommy-store/internal/domain"
	"sommy-store/internal/repo"

	"github.com/google/uuid"
)

type CartService interface {
	// Get returns the owner's cart, or an empty projection when none exists.
	Get(ctx context.Context, ownerID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID uuid.UUID) error
}

type cartService struct {
	carts repo.CartRepo
}

func NewCartService(carts repo.CartRepo) CartService {
	return &cartService{carts: carts}
}

func (s *cartService) Get(ctx context.Context, ownerID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if cart == nil {
		return emptyCart(ownerID), nil
	}
	return cart, nil
}

// AddItem accumulates: adding a product already in the cart increments its
// quantity instead of replacing it.
func (s *cartService) AddItem(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("Quantity must be a positive integer")
	}

	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Store(err)
	}

	now := time.Now()
	if cart == nil {
		cart = &domain.Cart{OwnerID: ownerID, Items: []domain.CartItem{}, CreatedAt: now}
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	cart.UpdatedAt = now
	if err := s.carts.Upsert(ctx, cart); err != nil {
		return nil, apperr.Store(err)
	}
	return cart, nil
}

// UpdateItem replaces the line's quantity; zero or negative removes the line.
// An absent cart is a no-op success, reported as the empty projection.
func (s *cartService) UpdateItem(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	cart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if cart == nil {
		return emptyCart(ownerID), nil
	}

	changed := false
	for i := range cart.Items {
		if cart.Items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		} else {
			cart.Items[i].Quantity = quantity
		}
		changed = true
		break
	}

	if changed {
		cart.UpdatedAt = time.Now()
		if err := s.carts.Upsert(ctx, cart); err != nil {
			return nil, apperr.Store(err)
		}
	}
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, ownerID uuid.UUID) error {
	// Deleting an absent cart succeeds.
	if err := s.carts.Delete(ctx, ownerID); err != nil {
		return apperr.Store(err)
	}
	return nil
}

func emptyCart(ownerID uuid.UUID) *domain.Cart {
	return &domain.Cart{OwnerID: ownerID, Items: []domain.CartItem{}}
}
