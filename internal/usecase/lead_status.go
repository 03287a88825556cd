package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xavierca1/hirelocal/internal/entity"
)

// LeadStatusUseCase moves leads along the state machine outside the accept path.
type LeadStatusUseCase struct {
	Leads      entity.LeadRepository
	Profiles   entity.FreelancerRepository
	Recorder   *InteractionRecorder
	Dispatcher *Dispatcher
	now        Clock
	log        *slog.Logger
}

func NewLeadStatusUseCase(leads entity.LeadRepository, profiles entity.FreelancerRepository, recorder *InteractionRecorder, dispatcher *Dispatcher, now Clock, log *slog.Logger) *LeadStatusUseCase {
	if now == nil {
		now = systemClock
	}
	return &LeadStatusUseCase{Leads: leads, Profiles: profiles, Recorder: recorder, Dispatcher: dispatcher, now: now, log: log}
}

func (uc *LeadStatusUseCase) load(ctx context.Context, leadID string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead not found")
		}
		return nil, storageError("failed to load lead", err)
	}
	return lead, nil
}

func (uc *LeadStatusUseCase) transition(ctx context.Context, lead *entity.Lead, to entity.LeadStatus) (*entity.Lead, error) {
	updated, err := uc.Leads.Transition(ctx, lead.ID, []entity.LeadStatus{lead.Status}, to, uc.now())
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrLeadNotFound):
			return nil, notFound("lead not found")
		case errors.Is(err, entity.ErrInvalidTransition):
			return nil, invalidTransition("lead cannot move from " + string(lead.Status) + " to " + string(to))
		}
		return nil, storageError("failed to update lead status", err)
	}
	uc.log.InfoContext(ctx, "lead status changed",
		slog.String("lead_id", lead.ID), slog.String("from", string(lead.Status)), slog.String("to", string(to)))
	return updated, nil
}

// Cancel is open to the owning customer and admins, for pending and accepted leads.
func (uc *LeadStatusUseCase) Cancel(ctx context.Context, caller entity.Identity, leadID string) (*entity.Lead, error) {
	lead, err := uc.load(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if caller.Role != entity.RoleAdmin && !(caller.Role == entity.RoleCustomer && lead.CustomerID == caller.UserID) {
		return nil, forbidden("only the lead owner can cancel it")
	}
	if !entity.CanTransition(lead.Status, entity.LeadCancelled) {
		return nil, invalidTransition("lead can no longer be cancelled")
	}

	updated, err := uc.transition(ctx, lead, entity.LeadCancelled)
	if err != nil {
		return nil, err
	}
	uc.afterClose(context.WithoutCancel(ctx), lead, entity.MissedLeadCancelled)
	return updated, nil
}

// Complete is open to the accepting freelancer, the owning customer and admins.
func (uc *LeadStatusUseCase) Complete(ctx context.Context, caller entity.Identity, leadID string) (*entity.Lead, error) {
	lead, err := uc.load(ctx, leadID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case entity.RoleAdmin:
	case entity.RoleCustomer:
		if lead.CustomerID != caller.UserID {
			return nil, forbidden("only the lead owner can complete it")
		}
	case entity.RoleFreelancer:
		profile, err := callerProfile(ctx, uc.Profiles, caller)
		if err != nil {
			return nil, err
		}
		if !lead.IsAcceptedBy(profile.ID) {
			return nil, forbidden("only the accepting freelancer can complete the lead")
		}
	default:
		return nil, forbidden("unknown role")
	}
	if lead.Status != entity.LeadAccepted {
		return nil, invalidTransition("only accepted leads can be completed")
	}

	updated, err := uc.transition(ctx, lead, entity.LeadCompleted)
	if err != nil {
		return nil, err
	}
	uc.notify(context.WithoutCancel(ctx), lead.CustomerID, updated, "Your request was marked completed")
	return updated, nil
}

// Correct is the admin override. Acceptance still only happens through the accept flow.
func (uc *LeadStatusUseCase) Correct(ctx context.Context, caller entity.Identity, leadID string, status string) (*entity.Lead, error) {
	if caller.Role != entity.RoleAdmin {
		return nil, forbidden("only admins can correct lead status")
	}
	to := entity.LeadStatus(status)
	if !to.Valid() {
		return nil, validationError("unknown lead status: " + status)
	}
	if to == entity.LeadAccepted {
		return nil, validationError("leads are accepted by freelancers, not set to accepted")
	}

	lead, err := uc.load(ctx, leadID)
	if err != nil {
		return nil, err
	}
	updated, err := uc.transition(ctx, lead, to)
	if err != nil {
		return nil, err
	}

	switch to {
	case entity.LeadCancelled:
		uc.afterClose(context.WithoutCancel(ctx), lead, entity.MissedLeadCancelled)
	case entity.LeadMissed, entity.LeadIgnored:
		uc.afterClose(context.WithoutCancel(ctx), lead, entity.MissedExpired)
	case entity.LeadCompleted:
		uc.notify(context.WithoutCancel(ctx), lead.CustomerID, updated, "Your request was marked completed")
	}
	return updated, nil
}

// afterClose closes open interactions and tells the accepting freelancer, if any.
func (uc *LeadStatusUseCase) afterClose(ctx context.Context, before *entity.Lead, reason string) {
	if _, err := uc.Recorder.MarkOthersMissed(ctx, before.ID, "", reason); err != nil {
		uc.log.WarnContext(ctx, "failed to close open interactions",
			slog.String("lead_id", before.ID), slog.Any("error", err))
	}
	if before.AcceptedBy == nil {
		return
	}
	profile, err := uc.Profiles.FindByID(ctx, *before.AcceptedBy)
	if err != nil {
		uc.log.WarnContext(ctx, "accepting freelancer not found",
			slog.String("lead_id", before.ID), slog.Any("error", err))
		return
	}
	uc.notify(ctx, profile.UserID, before, "A lead you accepted was cancelled")
}

func (uc *LeadStatusUseCase) notify(ctx context.Context, userID string, lead *entity.Lead, title string) {
	if uc.Dispatcher == nil {
		return
	}
	_, err := uc.Dispatcher.Deliver(ctx, userID, NotificationPayload{
		Type:    entity.NotificationLeadUpdated,
		Title:   title,
		Message: lead.Title,
		Link:    "/leads/" + lead.ID,
	})
	if err != nil {
		uc.log.WarnContext(ctx, "lead update notification failed",
			slog.String("lead_id", lead.ID), slog.Any("error", err))
	}
}
