package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type EntitlementStatus struct {
	FreelancerID   string     `json:"freelancer_id"`
	HasActivePlan  bool       `json:"has_active_lead_plan"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
}

// EntitlementStatusUseCase answers "can I accept leads right now" for a freelancer. Only
// the freelancer themselves and admins may ask.
type EntitlementStatusUseCase struct {
	Profiles    entity.FreelancerRepository
	Entitlement *EntitlementChecker
}

func NewEntitlementStatusUseCase(profiles entity.FreelancerRepository, entitlement *EntitlementChecker) *EntitlementStatusUseCase {
	return &EntitlementStatusUseCase{Profiles: profiles, Entitlement: entitlement}
}

func (uc *EntitlementStatusUseCase) Execute(ctx context.Context, caller entity.Identity, freelancerID string) (*EntitlementStatus, error) {
	profile, err := uc.Profiles.FindByID(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			return nil, notFound("freelancer profile not found")
		}
		return nil, storageError("failed to load freelancer profile", err)
	}
	if caller.Role != entity.RoleAdmin && profile.UserID != caller.UserID {
		return nil, forbidden("entitlement is only visible to its owner")
	}

	plan, err := uc.Entitlement.ActiveLeadPlan(ctx, profile.ID)
	if err != nil {
		return nil, storageError("failed to check entitlement", err)
	}
	status := &EntitlementStatus{FreelancerID: profile.ID}
	if plan != nil {
		end := plan.EndDate
		status.HasActivePlan = true
		status.SubscriptionID = plan.ID
		status.EndsAt = &end
	}
	return status, nil
}
