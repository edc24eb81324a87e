package worker

import (
	"context"
	"log/slog"
	"time"

	"sommy-store/internal/domain"
	"sommy-store/internal/repo"
)

const refundBatchSize = 100

// RefundWorker sweeps cancelled orders whose refund is still pending and
// advances them to completed once the grace period has passed. There is no
// real payment gateway behind this, so completion is pure bookkeeping.
type RefundWorker struct {
	orders   repo.OrderRepo
	interval time.Duration
	grace    time.Duration
	log      *slog.Logger
}

func NewRefundWorker(
	orders repo.OrderRepo,
	interval, grace time.Duration,
	log *slog.Logger,
) *RefundWorker {
	return &RefundWorker{
		orders:   orders,
		interval: interval,
		grace:    grace,
		log:      log,
	}
}

func (w *RefundWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("refund worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("refund worker stopped")
			return
		case <-ticker.C:
			if err := w.process(ctx); err != nil {
				w.log.Error("refund sweep failed", "error", err)
			}
		}
	}
}

func (w *RefundWorker) process(ctx context.Context) error {
	pending, err := w.orders.FindPendingRefunds(ctx, w.grace, refundBatchSize)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	w.log.Info("processing pending refunds", "count", len(pending))

	for i := range pending {
		order := &pending[i]
		order.RefundStatus = domain.RefundCompleted
		order.UpdatedAt = time.Now()

		if err := w.orders.Update(ctx, order); err != nil {
			w.log.Error("failed to complete refund", "order_id", order.ID, "error", err)
			continue // retried on the next sweep
		}
		w.log.Info("refund completed", "order_id", order.ID, "amount", order.RefundAmount)
	}
	return nil
}
