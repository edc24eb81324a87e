// Package notify delivers a copy of each created order to a side channel.
// Delivery is best effort: failures are logged by the caller and never block
// or roll back order creation.
package notify

import (
	"context"
	"sync"

	"sommy-store/internal/domain"
)

type Sink interface {
	Notify(ctx context.Context, order *domain.Order) error
}

// Memory keeps notified orders in process. Used when no broker is configured
// and in tests.
type Memory struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Notify(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *order)
	return nil
}

func (m *Memory) Notified() []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
