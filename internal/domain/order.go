package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderDispatched OrderStatus = "dispatched"
	OrderInTransit  OrderStatus = "in_transit"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderDispatched, OrderInTransit, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether the order can no longer be cancelled.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type RefundStatus string

const (
	RefundNone      RefundStatus = "none"
	RefundPending   RefundStatus = "pending"
	RefundCompleted RefundStatus = "completed"
)

// OrderLineItem is a snapshot of a product taken at order-creation time.
// Later catalog edits never change it. Product is attached on reads when the
// catalog still knows the product.
type OrderLineItem struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Product   *Product  `json:"product,omitempty"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OwnerID         uuid.UUID       `json:"userId"`
	Items           []OrderLineItem `json:"items"`
	Total           float64         `json:"total"`
	Status          OrderStatus     `json:"status"`
	OrderDate       time.Time       `json:"orderDate"`
	DispatchDate    *time.Time      `json:"dispatchDate,omitempty"`
	DepartureDate   *time.Time      `json:"departureDate,omitempty"`
	DeliveryDate    *time.Time      `json:"deliveryDate,omitempty"`
	CancellationFee float64         `json:"cancellationFee"`
	RefundAmount    float64         `json:"refundAmount"`
	RefundStatus    RefundStatus    `json:"refundStatus"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	Owner           *User           `json:"owner,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
