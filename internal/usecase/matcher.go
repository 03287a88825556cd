package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// Matcher resolves the freelancers a lead should be offered to.
type Matcher struct {
	profiles entity.FreelancerRepository
}

func NewMatcher(profiles entity.FreelancerRepository) *Matcher {
	return &Matcher{profiles: profiles}
}

// Match returns approved, available freelancers of the category. A blank area skips area
// filtering (leads without a precise location reach the whole category). No match is not
// an error.
func (m *Matcher) Match(ctx context.Context, categoryID, area string) ([]*entity.FreelancerProfile, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, validationError("category_id is required")
	}

	profiles, err := m.profiles.FindEligible(ctx, categoryID, entity.NormalizeArea(area))
	if err != nil {
		return nil, fmt.Errorf("find eligible freelancers: %w", err)
	}
	return profiles, nil
}
