package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// EntitlementChecker decides whether a freelancer currently holds an active lead plan.
// Results are never cached: every acceptance attempt asks the store again.
type EntitlementChecker struct {
	subs entity.SubscriptionRepository
	now  Clock
}

func NewEntitlementChecker(subs entity.SubscriptionRepository, now Clock) *EntitlementChecker {
	if now == nil {
		now = systemClock
	}
	return &EntitlementChecker{subs: subs, now: now}
}

func (c *EntitlementChecker) HasActiveLeadPlan(ctx context.Context, freelancerID string) (bool, error) {
	plan, err := c.ActiveLeadPlan(ctx, freelancerID)
	if err != nil {
		return false, err
	}
	return plan != nil, nil
}

// ActiveLeadPlan returns the lead subscription that runs the longest, or nil when none is
// active right now.
func (c *EntitlementChecker) ActiveLeadPlan(ctx context.Context, freelancerID string) (*entity.Subscription, error) {
	now := c.now()
	subs, err := c.subs.FindActive(ctx, freelancerID, entity.SubscriptionLead, now)
	if err != nil {
		return nil, fmt.Errorf("load lead subscriptions: %w", err)
	}

	var best *entity.Subscription
	for _, s := range subs {
		// the store filters too; the end date is re-checked against the same clock
		if s.Type != entity.SubscriptionLead || !s.ActiveAt(now) {
			continue
		}
		if best == nil || s.EndDate.After(best.EndDate) {
			best = s
		}
	}
	return best, nil
}
