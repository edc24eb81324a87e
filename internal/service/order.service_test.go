package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"sommy-store/internal/apperr"
	"sommy-store/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]domain.Order)}
}

func (m *memOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (m *memOrderRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, order := range m.orders {
		if order.OwnerID == ownerID {
			out = append(out, order)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

func (m *memOrderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, order := range m.orders {
		out = append(out, order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

func (m *memOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *memOrderRepo) FindPendingRefunds(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-olderThan)
	var out []domain.Order
	for _, order := range m.orders {
		if order.Status == domain.OrderCancelled &&
			order.RefundStatus == domain.RefundPending &&
			order.UpdatedAt.Before(cutoff) {
			out = append(out, order)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]domain.Product)}
}

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (m *memProductRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	return nil, nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	return m.Create(ctx, product)
}

func (m *memProductRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.products[id]
	delete(m.products, id)
	return ok, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if phone != "" && user.Phone == phone {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindAdminByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := m.FindByEmail(ctx, email)
	if err != nil || user == nil || !user.IsAdmin {
		return nil, err
	}
	return user, nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if ok {
		user.PasswordHash = passwordHash
		m.users[id] = user
	}
	return nil
}

type chanSink struct {
	ch chan domain.Order
}

func (s *chanSink) Notify(ctx context.Context, order *domain.Order) error {
	s.ch <- *order
	return nil
}

type failSink struct{}

func (failSink) Notify(ctx context.Context, order *domain.Order) error {
	return errors.New("broker unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrderFixture(sink interface {
	Notify(ctx context.Context, order *domain.Order) error
}) (OrderService, *memOrderRepo, *memProductRepo, *memUserRepo) {
	orders := newMemOrderRepo()
	products := newMemProductRepo()
	users := newMemUserRepo()
	svc := NewOrderService(orders, products, users, sink, discardLogger())
	return svc, orders, products, users
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		OwnerID: uuid.New(),
		Items: []domain.OrderLineItem{
			{ProductID: uuid.New(), Name: "Linen Shirt", Quantity: 2, UnitPrice: 25.00},
		},
		Total:           50.00,
		ShippingAddress: "12 Marina Rd",
		PaymentMethod:   "card",
	}
}

func TestCreateOrder(t *testing.T) {
	t.Run("persists a pending order and notifies", func(t *testing.T) {
		sink := &chanSink{ch: make(chan domain.Order, 1)}
		svc, orders, _, _ := newOrderFixture(sink)

		order, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
		require.Equal(t, domain.OrderPending, order.Status)
		require.Equal(t, domain.RefundNone, order.RefundStatus)
		require.False(t, order.OrderDate.IsZero())
		require.Equal(t, 1, orders.count())

		select {
		case notified := <-sink.ch:
			require.Equal(t, order.ID, notified.ID)
		case <-time.After(2 * time.Second):
			t.Fatal("notification never delivered")
		}
	})

	t.Run("sink failure never surfaces", func(t *testing.T) {
		svc, orders, _, _ := newOrderFixture(failSink{})

		order, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err, "a broken sink must not fail order creation")
		require.Equal(t, 1, orders.count())
		require.Equal(t, domain.OrderPending, order.Status)
	})

	t.Run("missing fields rejected, nothing persisted", func(t *testing.T) {
		svc, orders, _, _ := newOrderFixture(failSink{})

		cases := []CreateOrderInput{
			{Items: validInput().Items, Total: 50},           // no owner
			{OwnerID: uuid.New(), Total: 50},                 // no items
			{OwnerID: uuid.New(), Items: validInput().Items}, // no total
		}
		for _, in := range cases {
			_, err := svc.Create(context.Background(), in)
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		}
		require.Zero(t, orders.count(), "rejected orders must not be persisted")
	})

	t.Run("non-positive item quantity rejected", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})

		in := validInput()
		in.Items[0].Quantity = 0
		_, err := svc.Create(context.Background(), in)
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("computes fee and refund", func(t *testing.T) {
		svc, orders, _, _ := newOrderFixture(failSink{})

		in := validInput()
		in.Total = 100.00
		order, err := svc.Create(ctx, in)
		require.NoError(t, err)

		result, err := svc.Cancel(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, 3.00, result.CancellationFee)
		require.Equal(t, 97.00, result.RefundAmount)
		require.Equal(t, domain.RefundPending, result.RefundStatus)

		stored, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, domain.OrderCancelled, stored.Status)
		require.Equal(t, stored.Total, domain.RoundCents(stored.CancellationFee+stored.RefundAmount))
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})
		_, err := svc.Cancel(ctx, uuid.New())
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("terminal statuses conflict and stay unchanged", func(t *testing.T) {
		for _, status := range []domain.OrderStatus{domain.OrderDelivered, domain.OrderCancelled} {
			svc, orders, _, _ := newOrderFixture(failSink{})

			order, err := svc.Create(ctx, validInput())
			require.NoError(t, err)

			stored, _ := orders.FindByID(ctx, order.ID)
			stored.Status = status
			require.NoError(t, orders.Update(ctx, stored))

			_, err = svc.Cancel(ctx, order.ID)
			require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

			after, _ := orders.FindByID(ctx, order.ID)
			require.Equal(t, status, after.Status)
			require.Zero(t, after.CancellationFee)
		}
	})

	t.Run("second cancel conflicts", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})

		order, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, order.ID)
		require.NoError(t, err)
		_, err = svc.Cancel(ctx, order.ID)
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("applies subset of fields", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})

		order, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		dispatched := domain.OrderDispatched
		when := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
		updated, err := svc.UpdateStatus(ctx, order.ID, UpdateOrderInput{
			Status:       &dispatched,
			DispatchDate: &when,
		})
		require.NoError(t, err)
		require.Equal(t, domain.OrderDispatched, updated.Status)
		require.NotNil(t, updated.DispatchDate)
		require.True(t, updated.DispatchDate.Equal(when))
		require.Nil(t, updated.DeliveryDate)

		// A later update without a dispatch date must not clear it.
		inTransit := domain.OrderInTransit
		updated, err = svc.UpdateStatus(ctx, order.ID, UpdateOrderInput{Status: &inTransit})
		require.NoError(t, err)
		require.NotNil(t, updated.DispatchDate)
		require.Equal(t, domain.OrderInTransit, updated.Status)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})

		order, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		bogus := domain.OrderStatus("shipped")
		_, err = svc.UpdateStatus(ctx, order.ID, UpdateOrderInput{Status: &bogus})
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})
		_, err := svc.UpdateStatus(ctx, uuid.New(), UpdateOrderInput{})
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestTrackOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("projection", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})

		in := validInput()
		in.Total = 42.50
		order, err := svc.Create(ctx, in)
		require.NoError(t, err)

		info, err := svc.Track(ctx, order.ID)
		require.NoError(t, err)
		require.Equal(t, order.ID, info.OrderID)
		require.Equal(t, domain.OrderPending, info.Status)
		require.Equal(t, 42.50, info.Total)
		require.Nil(t, info.DeliveryDate)
	})

	t.Run("not found, never a server error", func(t *testing.T) {
		svc, _, _, _ := newOrderFixture(failSink{})
		_, err := svc.Track(ctx, uuid.New())
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestListOrdersByOwnerSortedNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, orders, _, _ := newOrderFixture(failSink{})

	owner := uuid.New()
	base := time.Now()
	for i := 0; i < 5; i++ {
		order := domain.Order{
			ID:        uuid.New(),
			OwnerID:   owner,
			Items:     validInput().Items,
			Total:     10,
			Status:    domain.OrderPending,
			OrderDate: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, orders.Create(ctx, &order))
	}

	got, err := svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].OrderDate.After(got[i-1].OrderDate),
			"orders must be sorted newest first")
	}
}

func TestGetOrderResolvesProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, products, _ := newOrderFixture(failSink{})

	product := domain.Product{ID: uuid.New(), Name: "Linen Shirt", Price: 25}
	require.NoError(t, products.Create(ctx, &product))

	in := validInput()
	in.Items = []domain.OrderLineItem{
		{ProductID: product.ID, Name: "Linen Shirt", Quantity: 1, UnitPrice: 25},
		{ProductID: uuid.New(), Name: "Gone Product", Quantity: 1, UnitPrice: 5},
	}
	in.Total = 30
	order, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Items[0].Product, "known product should be resolved")
	require.Equal(t, product.ID, got.Items[0].Product.ID)
	require.Nil(t, got.Items[1].Product, "deleted product stays a snapshot-only line")
}

func TestListAllResolvesOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _, users := newOrderFixture(failSink{})

	owner := domain.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, users.Create(ctx, &owner))

	in := validInput()
	in.OwnerID = owner.ID
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Owner)
	require.Equal(t, "ada@example.com", all[0].Owner.Email)
}
