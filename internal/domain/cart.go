package domain

import (
	"time"

	"github.com/google/uuid"
)

type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	Product   *Product  `json:"product,omitempty"`
}

// Cart holds one line per distinct product. One cart per owner.
type Cart struct {
	OwnerID   uuid.UUID  `json:"userId"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
