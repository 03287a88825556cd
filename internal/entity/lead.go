package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadPending   LeadStatus = "pending"
	LeadAccepted  LeadStatus = "accepted"
	LeadCompleted LeadStatus = "completed"
	LeadCancelled LeadStatus = "cancelled"
	LeadMissed    LeadStatus = "missed"
	LeadIgnored   LeadStatus = "ignored"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrInvalidTransition = errors.New("invalid lead status transition")
)

// leadTransitions is the full lead state machine. Anything not listed is rejected.
var leadTransitions = map[LeadStatus][]LeadStatus{
	LeadPending:  {LeadAccepted, LeadCancelled, LeadMissed, LeadIgnored},
	LeadAccepted: {LeadCompleted, LeadCancelled},
}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadPending, LeadAccepted, LeadCompleted, LeadCancelled, LeadMissed, LeadIgnored:
		return true
	}
	return false
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to LeadStatus) bool {
	for _, next := range leadTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Lead struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customer_id"`
	CategoryID   string     `json:"category_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	BudgetMin    int        `json:"budget_min"`
	BudgetMax    int        `json:"budget_max"`
	Location     string     `json:"location"`
	MobileNumber string     `json:"mobile_number,omitempty"`
	Status       LeadStatus `json:"status"`
	AcceptedBy   *string    `json:"accepted_by,omitempty"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewLead(customerID, categoryID, title, description, location, mobile string, budgetMin, budgetMax int) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:           uuid.New().String(),
		CustomerID:   customerID,
		CategoryID:   strings.TrimSpace(categoryID),
		Title:        strings.TrimSpace(title),
		Description:  description,
		BudgetMin:    budgetMin,
		BudgetMax:    budgetMax,
		Location:     location,
		MobileNumber: mobile,
		Status:       LeadPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.CustomerID == "" {
		return errors.New("customer_id is required")
	}
	if l.CategoryID == "" {
		return errors.New("category_id is required")
	}
	if l.Title == "" {
		return errors.New("title is required")
	}
	if l.BudgetMin < 0 || l.BudgetMax < 0 {
		return errors.New("budget must not be negative")
	}
	if l.BudgetMax > 0 && l.BudgetMin > l.BudgetMax {
		return errors.New("budget_min must not exceed budget_max")
	}
	return nil
}

// IsAcceptedBy reports whether freelancerID is the single winner of this lead.
func (l *Lead) IsAcceptedBy(freelancerID string) bool {
	return l.AcceptedBy != nil && *l.AcceptedBy == freelancerID
}

type AcceptReason string

const (
	AcceptAlreadyAccepted AcceptReason = "already_accepted"
	AcceptNotFound        AcceptReason = "not_found"
	AcceptNotPending      AcceptReason = "not_pending"
)

// AcceptResult is the outcome of a conditional pending -> accepted update.
type AcceptResult struct {
	Accepted bool
	Reason   AcceptReason
	Lead     *Lead
}

// LeadRepository owns leads and their status transitions. TryAccept, Transition and
// ReleaseAcceptance must be single conditional updates executed by the store.
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListByStatus(ctx context.Context, status LeadStatus, limit int) ([]*Lead, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Lead, error)
	TryAccept(ctx context.Context, leadID, freelancerID string, at time.Time) (AcceptResult, error)
	// Transition moves a lead from one of the expected statuses to `to`. It returns
	// ErrInvalidTransition if the current status is not in `from`.
	Transition(ctx context.Context, leadID string, from []LeadStatus, to LeadStatus, at time.Time) (*Lead, error)
	// ReleaseAcceptance undoes an acceptance that could not be completed. It only applies
	// while the lead is still accepted by freelancerID.
	ReleaseAcceptance(ctx context.Context, leadID, freelancerID string, at time.Time) error
	// ExpirePending moves pending leads created before cutoff to missed and returns their ids.
	ExpirePending(ctx context.Context, cutoff, at time.Time) ([]string, error)
}
