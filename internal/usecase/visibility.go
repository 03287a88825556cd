package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// callerProfile loads the freelancer profile behind caller and checks it belongs to them.
func callerProfile(ctx context.Context, profiles entity.FreelancerRepository, caller entity.Identity) (*entity.FreelancerProfile, error) {
	if caller.Role != entity.RoleFreelancer || caller.FreelancerProfileID == "" {
		return nil, forbidden("caller is not a freelancer")
	}
	profile, err := profiles.FindByID(ctx, caller.FreelancerProfileID)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			return nil, notFound("freelancer profile not found")
		}
		return nil, storageError("failed to load freelancer profile", err)
	}
	if profile.UserID != caller.UserID {
		return nil, forbidden("profile does not belong to the caller")
	}
	return profile, nil
}

// offeredTo is the lead visibility rule for freelancers: the lead matches the profile
// today, or it was offered to them earlier. Viewing and accepting share it.
func offeredTo(ctx context.Context, interactions entity.InteractionRepository, profile *entity.FreelancerProfile, lead *entity.Lead) error {
	if profile.Matches(lead.CategoryID, lead.Location) {
		return nil
	}
	_, err := interactions.Find(ctx, profile.ID, lead.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, entity.ErrInteractionNotFound) {
		return forbidden("lead was not offered to this freelancer")
	}
	return storageError("failed to load interaction", err)
}
