package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// LeadSweeper closes pending leads nobody accepted within the window.
type LeadSweeper struct {
	Leads    entity.LeadRepository
	Recorder *InteractionRecorder
	Window   time.Duration
	now      Clock
	log      *slog.Logger
}

func NewLeadSweeper(leads entity.LeadRepository, recorder *InteractionRecorder, window time.Duration, now Clock, log *slog.Logger) *LeadSweeper {
	if now == nil {
		now = systemClock
	}
	return &LeadSweeper{Leads: leads, Recorder: recorder, Window: window, now: now, log: log}
}

// SweepMissed returns the ids of the leads it moved to missed.
func (s *LeadSweeper) SweepMissed(ctx context.Context) ([]string, error) {
	now := s.now()
	ids, err := s.Leads.ExpirePending(ctx, now.Add(-s.Window), now)
	if err != nil {
		return nil, fmt.Errorf("expire pending leads: %w", err)
	}
	for _, id := range ids {
		n, err := s.Recorder.MarkOthersMissed(ctx, id, "", entity.MissedExpired)
		if err != nil {
			s.log.WarnContext(ctx, "failed to close interactions of missed lead",
				slog.String("lead_id", id), slog.Any("error", err))
			continue
		}
		s.log.InfoContext(ctx, "lead missed",
			slog.String("lead_id", id), slog.Int64("freelancers", n))
	}
	return ids, nil
}

// SubscriptionSweeper keeps the status column in step with end dates. Entitlement never
// depends on it having run.
type SubscriptionSweeper struct {
	Subs entity.SubscriptionRepository
	now  Clock
}

func NewSubscriptionSweeper(subs entity.SubscriptionRepository, now Clock) *SubscriptionSweeper {
	if now == nil {
		now = systemClock
	}
	return &SubscriptionSweeper{Subs: subs, now: now}
}

func (s *SubscriptionSweeper) ExpireLapsed(ctx context.Context) (int64, error) {
	n, err := s.Subs.ExpireLapsed(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire lapsed subscriptions: %w", err)
	}
	return n, nil
}
