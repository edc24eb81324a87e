package service

import (
	"context"
	"log/slog"
	"time"

	"sommy-store/internal/apperr"
	"sommy-store/internal/domain"
	"sommy-store/internal/infrastructure/notify"
	"sommy-store/internal/repo"

	"github.com/google/uuid"
)

// cancellationFeeRate is the share of the order total retained when a
// customer cancels.
const cancellationFeeRate = 0.03

type CreateOrderInput struct {
	OwnerID         uuid.UUID
	Items           []domain.OrderLineItem
	Total           float64
	ShippingAddress string
	PaymentMethod   string
}

type UpdateOrderInput struct {
	Status        *domain.OrderStatus
	DispatchDate  *time.Time
	DepartureDate *time.Time
	DeliveryDate  *time.Time
}

type CancelResult struct {
	CancellationFee float64             `json:"cancellationFee"`
	RefundAmount    float64             `json:"refundAmount"`
	RefundStatus    domain.RefundStatus `json:"refundStatus"`
}

type TrackingInfo struct {
	OrderID       uuid.UUID          `json:"orderId"`
	Status        domain.OrderStatus `json:"status"`
	OrderDate     time.Time          `json:"orderDate"`
	DispatchDate  *time.Time         `json:"dispatchDate,omitempty"`
	DepartureDate *time.Time         `json:"departureDate,omitempty"`
	DeliveryDate  *time.Time         `json:"deliveryDate,omitempty"`
	Total         float64            `json:"total"`
}

type OrderService interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*CancelResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, in UpdateOrderInput) (*domain.Order, error)
	Track(ctx context.Context, orderID uuid.UUID) (*TrackingInfo, error)
}

type orderService struct {
	orders   repo.OrderRepo
	products repo.ProductRepo
	users    repo.UserRepo
	sink     notify.Sink
	log      *slog.Logger
}

func NewOrderService(
	orders repo.OrderRepo,
	products repo.ProductRepo,
	users repo.UserRepo,
	sink notify.Sink,
	log *slog.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		users:    users,
		sink:     sink,
		log:      log,
	}
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if in.OwnerID == uuid.Nil || len(in.Items) == 0 || in.Total <= 0 {
		return nil, apperr.Validation("Missing required fields")
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("Item quantity must be a positive integer")
		}
		if item.UnitPrice < 0 {
			return nil, apperr.Validation("Item price cannot be negative")
		}
	}

	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		OwnerID:         in.OwnerID,
		Items:           in.Items,
		Total:           in.Total,
		Status:          domain.OrderPending,
		OrderDate:       now,
		RefundStatus:    domain.RefundNone,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperr.Store(err)
	}

	// Detached delivery: a sink failure must never surface to the caller or
	// roll back the persisted order.
	go func(copy domain.Order) {
		nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sink.Notify(nctx, &copy); err != nil {
			s.log.Warn("order notification failed", "order_id", copy.ID, "error", err)
		}
	}(*order)

	return order, nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}

	s.resolveProducts(ctx, order)
	return order, nil
}

func (s *orderService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	orders, err := s.orders.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	for i := range orders {
		s.resolveProducts(ctx, &orders[i])
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, apperr.Store(err)
	}
	for i := range orders {
		s.resolveProducts(ctx, &orders[i])
		s.resolveOwner(ctx, &orders[i])
	}
	return orders, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (*CancelResult, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}
	if order.Status.Terminal() {
		return nil, apperr.Conflict("Order cannot be cancelled in current status")
	}

	fee := domain.RoundCents(order.Total * cancellationFeeRate)
	refund := domain.RoundCents(order.Total - fee)

	order.Status = domain.OrderCancelled
	order.CancellationFee = fee
	order.RefundAmount = refund
	order.RefundStatus = domain.RefundPending
	order.UpdatedAt = time.Now()

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperr.Store(err)
	}

	return &CancelResult{
		CancellationFee: fee,
		RefundAmount:    refund,
		RefundStatus:    domain.RefundPending,
	}, nil
}

// UpdateStatus applies any subset of status and shipping dates. Status
// overwrites without transition checks; dates are only ever set, never
// cleared.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, in UpdateOrderInput) (*domain.Order, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Validation("Invalid order status")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}

	if in.Status != nil {
		order.Status = *in.Status
	}
	if in.DispatchDate != nil {
		order.DispatchDate = in.DispatchDate
	}
	if in.DepartureDate != nil {
		order.DepartureDate = in.DepartureDate
	}
	if in.DeliveryDate != nil {
		order.DeliveryDate = in.DeliveryDate
	}
	order.UpdatedAt = time.Now()

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, apperr.Store(err)
	}
	return order, nil
}

func (s *orderService) Track(ctx context.Context, orderID uuid.UUID) (*TrackingInfo, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}

	return &TrackingInfo{
		OrderID:       order.ID,
		Status:        order.Status,
		OrderDate:     order.OrderDate,
		DispatchDate:  order.DispatchDate,
		DepartureDate: order.DepartureDate,
		DeliveryDate:  order.DeliveryDate,
		Total:         order.Total,
	}, nil
}

// resolveProducts joins line items against the live catalog for presentation.
// A product deleted since the order was placed just stays unresolved; the
// snapshot fields carry the read.
func (s *orderService) resolveProducts(ctx context.Context, order *domain.Order) {
	for i := range order.Items {
		product, err := s.products.FindByID(ctx, order.Items[i].ProductID)
		if err != nil {
			s.log.Warn("product lookup failed", "product_id", order.Items[i].ProductID, "error", err)
			continue
		}
		order.Items[i].Product = product
	}
}

func (s *orderService) resolveOwner(ctx context.Context, order *domain.Order) {
	user, err := s.users.FindByID(ctx, order.OwnerID)
	if err != nil {
		s.log.Warn("owner lookup failed", "owner_id", order.OwnerID, "error", err)
		return
	}
	order.Owner = user
}
