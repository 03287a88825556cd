package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/hirelocal/internal/infra/http/middleware"
)

type LeadSweeper interface {
	SweepMissed(ctx context.Context) ([]string, error)
}

// MissedLeadWorker periodically closes pending leads nobody accepted in time.
type MissedLeadWorker struct {
	sweeper      LeadSweeper
	tickInterval time.Duration
	log          *slog.Logger
}

func NewMissedLeadWorker(sweeper LeadSweeper, tickInterval time.Duration, log *slog.Logger) *MissedLeadWorker {
	return &MissedLeadWorker{
		sweeper:      sweeper,
		tickInterval: tickInterval,
		log:          log.With(slog.String("worker", "missed_leads")),
	}
}

func (w *MissedLeadWorker) Start(ctx context.Context) {
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

func (w *MissedLeadWorker) RunOnce(ctx context.Context) int {
	ids, err := w.sweeper.SweepMissed(ctx)
	if err != nil {
		w.log.ErrorContext(ctx, "missed lead sweep failed", slog.Any("error", err))
		return 0
	}
	if len(ids) > 0 {
		w.log.InfoContext(ctx, "leads marked missed", slog.Int("count", len(ids)))
	}
	middleware.RecordSweep("missed_leads", len(ids))
	return len(ids)
}
