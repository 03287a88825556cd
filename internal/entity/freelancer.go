package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

var ErrProfileNotFound = errors.New("freelancer profile not found")

type FreelancerProfile struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	CategoryID         string             `json:"category_id"`
	Area               string             `json:"area"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	IsAvailable        bool               `json:"is_available"`
	Rating             float64            `json:"rating"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// NormalizeArea lowercases an area name and collapses whitespace, so "Jaipur " and
// " jaipur" compare equal.
func NormalizeArea(area string) string {
	return strings.Join(strings.Fields(strings.ToLower(area)), " ")
}

// Eligible reports whether the profile can receive leads at all.
func (p *FreelancerProfile) Eligible() bool {
	return p.VerificationStatus == VerificationApproved && p.IsAvailable
}

// Matches is the matching predicate: eligible, same category and, when area is not
// blank, the same normalized area.
func (p *FreelancerProfile) Matches(categoryID, area string) bool {
	if !p.Eligible() || p.CategoryID != categoryID {
		return false
	}
	key := NormalizeArea(area)
	if key == "" {
		return true
	}
	return NormalizeArea(p.Area) == key
}

type FreelancerRepository interface {
	FindByID(ctx context.Context, id string) (*FreelancerProfile, error)
	FindByUserID(ctx context.Context, userID string) (*FreelancerProfile, error)
	// FindEligible returns approved, available profiles of the category. An empty areaKey
	// skips area filtering; otherwise it must equal NormalizeArea(profile.Area).
	FindEligible(ctx context.Context, categoryID, areaKey string) ([]*FreelancerProfile, error)
}
