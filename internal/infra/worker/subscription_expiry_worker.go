package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
)

type SubscriptionSweeper interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// SubscriptionExpiryWorker keeps subscription status in step with end dates. Entitlement
// checks never wait for it.
type SubscriptionExpiryWorker struct {
	sweeper      SubscriptionSweeper
	tickInterval time.Duration
	log          *slog.Logger
}

func NewSubscriptionExpiryWorker(sweeper SubscriptionSweeper, tickInterval time.Duration, log *slog.Logger) *SubscriptionExpiryWorker {
	return &SubscriptionExpiryWorker{
		sweeper:      sweeper,
		tickInterval: tickInterval,
		log:          log.With(slog.String("worker", "subscription_expiry")),
	}
}

func (w *SubscriptionExpiryWorker) Start(ctx context.Context) {
	w.log.Info("worker started", slog.Duration("interval", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

func (w *SubscriptionExpiryWorker) RunOnce(ctx context.Context) int64 {
	n, err := w.sweeper.ExpireLapsed(ctx)
	if err != nil {
		w.log.ErrorContext(ctx, "subscription sweep failed", slog.Any("error", err))
		return 0
	}
	if n > 0 {
		w.log.InfoContext(ctx, "subscriptions expired", slog.Int64("count", n))
	}
	middleware.RecordSweep("subscriptions", int(n))
	return n
}
