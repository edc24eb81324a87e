package notify

import (
	"context"
	"testing"

	"sommy-store/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMemorySinkRecordsNotifications(t *testing.T) {
	sink := NewMemory()
	ctx := context.Background()

	first := &domain.Order{ID: uuid.New(), Status: domain.OrderPending}
	second := &domain.Order{ID: uuid.New(), Status: domain.OrderPending}

	require.NoError(t, sink.Notify(ctx, first))
	require.NoError(t, sink.Notify(ctx, second))

	got := sink.Notified()
	require.Len(t, got, 2)
	require.Equal(t, first.ID, got[0].ID)
	require.Equal(t, second.ID, got[1].ID)
}
