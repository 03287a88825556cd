package entity

import (
	"context"
	"errors"
	"time"
)

type InteractionStatus string

const (
	InteractionNotified InteractionStatus = "notified"
	InteractionViewed   InteractionStatus = "viewed"
	InteractionAccepted InteractionStatus = "accepted"
	InteractionMissed   InteractionStatus = "missed"
	InteractionIgnored  InteractionStatus = "ignored"
)

// Terminal reports whether the status is a response outcome.
func (s InteractionStatus) Terminal() bool {
	return s == InteractionAccepted || s == InteractionMissed || s == InteractionIgnored
}

const (
	MissedAcceptedByOther = "accepted_by_other"
	MissedExpired         = "expired"
	MissedLeadCancelled   = "lead_cancelled"
)

var (
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrAlreadyResponded    = errors.New("interaction already has a response")
	ErrInvalidOutcome      = errors.New("invalid interaction outcome")
)

// FreelancerLeadInteraction is the per (freelancer, lead) audit row. It is created at
// notification time, updated at most twice (view, response) and never deleted.
type FreelancerLeadInteraction struct {
	ID           string            `json:"id"`
	FreelancerID string            `json:"freelancer_id"`
	LeadID       string            `json:"lead_id"`
	Status       InteractionStatus `json:"status"`
	MissedReason *string           `json:"missed_reason,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	NotifiedAt   time.Time         `json:"notified_at"`
	ViewedAt     *time.Time        `json:"viewed_at,omitempty"`
	RespondedAt  *time.Time        `json:"responded_at,omitempty"`
}

type InteractionRepository interface {
	// UpsertNotified inserts the row if absent. created is false when the pair already
	// had a row, which is left untouched.
	UpsertNotified(ctx context.Context, freelancerID, leadID string, at time.Time) (created bool, err error)
	// MarkViewed stamps viewed_at once and moves notified -> viewed.
	MarkViewed(ctx context.Context, freelancerID, leadID string, at time.Time) (*FreelancerLeadInteraction, error)
	// RecordResponse sets the outcome if the pair has not responded yet, creating the row
	// when missing. It returns ErrAlreadyResponded otherwise.
	RecordResponse(ctx context.Context, freelancerID, leadID string, outcome InteractionStatus, reason, notes *string, at time.Time) (*FreelancerLeadInteraction, error)
	// MarkMissed responds "missed" for every unresponded row of the lead except one freelancer.
	MarkMissed(ctx context.Context, leadID, exceptFreelancerID, reason string, at time.Time) (int64, error)
	Find(ctx context.Context, freelancerID, leadID string) (*FreelancerLeadInteraction, error)
	ListByLead(ctx context.Context, leadID string) ([]*FreelancerLeadInteraction, error)
	ListByFreelancer(ctx context.Context, freelancerID string, limit int) ([]*FreelancerLeadInteraction, error)
}
