package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// InteractionRecorder keeps the per (freelancer, lead) audit trail.
type InteractionRecorder struct {
	repo entity.InteractionRepository
	now  Clock
}

func NewInteractionRecorder(repo entity.InteractionRepository, now Clock) *InteractionRecorder {
	if now == nil {
		now = systemClock
	}
	return &InteractionRecorder{repo: repo, now: now}
}

// RecordNotified is idempotent: a second call for the same pair changes nothing and
// reports created=false.
func (r *InteractionRecorder) RecordNotified(ctx context.Context, freelancerID, leadID string) (bool, error) {
	created, err := r.repo.UpsertNotified(ctx, freelancerID, leadID, r.now())
	if err != nil {
		return false, fmt.Errorf("record notified: %w", err)
	}
	return created, nil
}

func (r *InteractionRecorder) RecordViewed(ctx context.Context, freelancerID, leadID string) (*entity.FreelancerLeadInteraction, error) {
	row, err := r.repo.MarkViewed(ctx, freelancerID, leadID, r.now())
	if err != nil {
		return nil, fmt.Errorf("record viewed: %w", err)
	}
	return row, nil
}

// RecordResponded stores the outcome once. A pair that already responded keeps its first
// outcome and the call fails with entity.ErrAlreadyResponded.
func (r *InteractionRecorder) RecordResponded(ctx context.Context, freelancerID, leadID string, outcome entity.InteractionStatus, notes string) (*entity.FreelancerLeadInteraction, error) {
	if !outcome.Terminal() {
		return nil, entity.ErrInvalidOutcome
	}
	var n *string
	if notes != "" {
		n = &notes
	}
	row, err := r.repo.RecordResponse(ctx, freelancerID, leadID, outcome, nil, n, r.now())
	if err != nil {
		if errors.Is(err, entity.ErrAlreadyResponded) {
			return nil, err
		}
		return nil, fmt.Errorf("record response: %w", err)
	}
	return row, nil
}

// MarkOthersMissed closes every open interaction of the lead except the winner's.
func (r *InteractionRecorder) MarkOthersMissed(ctx context.Context, leadID, winnerID, reason string) (int64, error) {
	n, err := r.repo.MarkMissed(ctx, leadID, winnerID, reason, r.now())
	if err != nil {
		return 0, fmt.Errorf("mark missed: %w", err)
	}
	return n, nil
}
