package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xavierca1/hirelocal/internal/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

type LeadDetail struct {
	Lead          *entity.Lead                      `json:"lead"`
	Interaction   *entity.FreelancerLeadInteraction `json:"interaction,omitempty"`
	ContactHidden bool                              `json:"contact_hidden"`
}

// redactContact hides the customer's number from everyone but the accepting freelancer.
func redactContact(l *entity.Lead, profileID string) (*entity.Lead, bool) {
	if l.IsAcceptedBy(profileID) {
		return l, false
	}
	c := *l
	c.MobileNumber = ""
	return &c, true
}

type GetLeadUseCase struct {
	Leads        entity.LeadRepository
	Profiles     entity.FreelancerRepository
	Interactions entity.InteractionRepository
	Recorder     *InteractionRecorder
	log          *slog.Logger
}

func NewGetLeadUseCase(leads entity.LeadRepository, profiles entity.FreelancerRepository, interactions entity.InteractionRepository, recorder *InteractionRecorder, log *slog.Logger) *GetLeadUseCase {
	return &GetLeadUseCase{Leads: leads, Profiles: profiles, Interactions: interactions, Recorder: recorder, log: log}
}

// Execute returns a lead to its owner, an admin, or a freelancer it was offered to. A
// freelancer's read counts as a view.
func (uc *GetLeadUseCase) Execute(ctx context.Context, caller entity.Identity, leadID string) (*LeadDetail, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead not found")
		}
		return nil, storageError("failed to load lead", err)
	}

	switch caller.Role {
	case entity.RoleAdmin:
		return &LeadDetail{Lead: lead}, nil
	case entity.RoleCustomer:
		if lead.CustomerID != caller.UserID {
			return nil, notFound("lead not found")
		}
		return &LeadDetail{Lead: lead}, nil
	case entity.RoleFreelancer:
		return uc.freelancerView(ctx, caller, lead)
	}
	return nil, forbidden("unknown role")
}

func (uc *GetLeadUseCase) freelancerView(ctx context.Context, caller entity.Identity, lead *entity.Lead) (*LeadDetail, error) {
	profile, err := callerProfile(ctx, uc.Profiles, caller)
	if err != nil {
		return nil, err
	}
	if err := offeredTo(ctx, uc.Interactions, profile, lead); err != nil {
		return nil, err
	}

	detail := &LeadDetail{}
	detail.Lead, detail.ContactHidden = redactContact(lead, profile.ID)

	row, err := uc.Recorder.RecordViewed(ctx, profile.ID, lead.ID)
	switch {
	case err == nil:
		detail.Interaction = row
	case errors.Is(err, entity.ErrInteractionNotFound):
		// matches now but was never offered, nothing to stamp
	default:
		uc.log.WarnContext(ctx, "failed to record lead view",
			slog.String("lead_id", lead.ID), slog.String("freelancer_id", profile.ID), slog.Any("error", err))
	}
	return detail, nil
}

type ListLeadsUseCase struct {
	Leads entity.LeadRepository
}

func NewListLeadsUseCase(leads entity.LeadRepository) *ListLeadsUseCase {
	return &ListLeadsUseCase{Leads: leads}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, caller entity.Identity, status string, limit int) ([]*entity.Lead, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, forbidden("only admins can list leads by status")
	}
	s := entity.LeadStatus(status)
	if status == "" {
		s = entity.LeadPending
	}
	if !s.Valid() {
		return nil, validationError("unknown lead status: " + status)
	}
	leads, err := uc.Leads.ListByStatus(ctx, s, clampLimit(limit))
	if err != nil {
		return nil, storageError("failed to list leads", err)
	}
	return leads, nil
}

type InboxItem struct {
	Interaction *entity.FreelancerLeadInteraction `json:"interaction"`
	Lead        *entity.Lead                      `json:"lead,omitempty"`
}

// InboxUseCase lists the leads offered to the calling freelancer, newest first.
type InboxUseCase struct {
	Profiles     entity.FreelancerRepository
	Leads        entity.LeadRepository
	Interactions entity.InteractionRepository
}

func NewInboxUseCase(profiles entity.FreelancerRepository, leads entity.LeadRepository, interactions entity.InteractionRepository) *InboxUseCase {
	return &InboxUseCase{Profiles: profiles, Leads: leads, Interactions: interactions}
}

func (uc *InboxUseCase) Execute(ctx context.Context, caller entity.Identity, limit int) ([]InboxItem, error) {
	profile, err := callerProfile(ctx, uc.Profiles, caller)
	if err != nil {
		return nil, err
	}

	rows, err := uc.Interactions.ListByFreelancer(ctx, profile.ID, clampLimit(limit))
	if err != nil {
		return nil, storageError("failed to list interactions", err)
	}
	if len(rows) == 0 {
		return []InboxItem{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.LeadID)
	}
	leads, err := uc.Leads.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("failed to load leads", err)
	}
	byID := make(map[string]*entity.Lead, len(leads))
	for _, l := range leads {
		byID[l.ID] = l
	}

	items := make([]InboxItem, 0, len(rows))
	for _, r := range rows {
		item := InboxItem{Interaction: r}
		if l, ok := byID[r.LeadID]; ok {
			item.Lead, _ = redactContact(l, profile.ID)
		}
		items = append(items, item)
	}
	return items, nil
}
