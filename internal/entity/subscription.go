package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SubscriptionType string

const (
	SubscriptionLead     SubscriptionType = "lead"
	SubscriptionPosition SubscriptionType = "position"
	SubscriptionBadge    SubscriptionType = "badge"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is created by the payment flow; this service only reads it (and flips
// lapsed rows to expired, which is advisory).
type Subscription struct {
	ID           string             `json:"id"`
	FreelancerID string             `json:"freelancer_id"`
	Type         SubscriptionType   `json:"type"`
	Status       SubscriptionStatus `json:"status"`
	StartDate    time.Time          `json:"start_date"`
	EndDate      time.Time          `json:"end_date"`
	CategoryID   *string            `json:"category_id,omitempty"`
	Area         *string            `json:"area,omitempty"`
	Position     *int               `json:"position,omitempty"`
	BadgeType    *string            `json:"badge_type,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ActiveAt checks both the status and the end date. The status column may lag behind
// the end date, so neither is trusted alone.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s.Status == SubscriptionActive && s.EndDate.After(now)
}

// NewSubscription builds an active subscription running from start for d.
func NewSubscription(freelancerID string, typ SubscriptionType, start time.Time, d time.Duration) *Subscription {
	now := time.Now().UTC()
	return &Subscription{
		ID:           uuid.New().String(),
		FreelancerID: freelancerID,
		Type:         typ,
		Status:       SubscriptionActive,
		StartDate:    start,
		EndDate:      start.Add(d),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

type SubscriptionRepository interface {
	// FindActive returns subscriptions of the given type that are active at now.
	FindActive(ctx context.Context, freelancerID string, typ SubscriptionType, now time.Time) ([]*Subscription, error)
	// ExpireLapsed flips active rows whose end date is not after now to expired.
	ExpireLapsed(ctx context.Context, now time.Time) (int64, error)
}
