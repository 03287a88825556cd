package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/queue"
)

type AcceptLeadOutput struct {
	Lead        *entity.Lead                      `json:"lead"`
	Interaction *entity.FreelancerLeadInteraction `json:"interaction"`
}

// AcceptLeadUseCase coordinates an accept request: profile check, entitlement, the
// conditional accept, the interaction record and the customer notice.
type AcceptLeadUseCase struct {
	Profiles     entity.FreelancerRepository
	Leads        entity.LeadRepository
	Interactions entity.InteractionRepository
	Entitlement  *EntitlementChecker
	Recorder     *InteractionRecorder
	Dispatcher   *Dispatcher
	Notices      CustomerNoticePublisher
	Timeout      time.Duration
	now          Clock
	log          *slog.Logger
}

func NewAcceptLeadUseCase(
	profiles entity.FreelancerRepository,
	leads entity.LeadRepository,
	interactions entity.InteractionRepository,
	entitlement *EntitlementChecker,
	recorder *InteractionRecorder,
	dispatcher *Dispatcher,
	notices CustomerNoticePublisher,
	timeout time.Duration,
	now Clock,
	log *slog.Logger,
) *AcceptLeadUseCase {
	if now == nil {
		now = systemClock
	}
	return &AcceptLeadUseCase{
		Profiles:     profiles,
		Leads:        leads,
		Interactions: interactions,
		Entitlement:  entitlement,
		Recorder:     recorder,
		Dispatcher:   dispatcher,
		Notices:      notices,
		Timeout:      timeout,
		now:          now,
		log:          log,
	}
}

func (uc *AcceptLeadUseCase) Execute(ctx context.Context, caller entity.Identity, leadID string) (*AcceptLeadOutput, error) {
	if uc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.Timeout)
		defer cancel()
	}

	profile, err := uc.requesterProfile(ctx, caller)
	if err != nil {
		return nil, err
	}

	entitled, err := uc.Entitlement.HasActiveLeadPlan(ctx, profile.ID)
	if err != nil {
		return nil, storageError("failed to check entitlement", err)
	}

	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("lead not found")
		}
		return nil, storageError("failed to load lead", err)
	}
	if !entitled {
		// a lead that is already gone is a conflict for everyone, plan or not
		if lead.Status != entity.LeadPending {
			return nil, ErrLeadUnavailable
		}
		uc.log.InfoContext(ctx, "lead acceptance blocked, no active lead plan",
			slog.String("lead_id", leadID), slog.String("freelancer_id", profile.ID))
		return nil, ErrUpgradeRequired
	}
	if err := offeredTo(ctx, uc.Interactions, profile, lead); err != nil {
		return nil, err
	}

	var accepted *entity.Lead
	var interaction *entity.FreelancerLeadInteraction

	txn := NewTransaction(uc.log)
	txn.AddOperation("try_accept",
		func(ctx context.Context) error {
			res, err := uc.Leads.TryAccept(ctx, lead.ID, profile.ID, uc.now())
			if err != nil {
				return storageError("failed to accept lead", err)
			}
			if !res.Accepted {
				if res.Reason == entity.AcceptNotFound {
					return notFound("lead not found")
				}
				uc.log.InfoContext(ctx, "lead acceptance lost",
					slog.String("lead_id", lead.ID),
					slog.String("freelancer_id", profile.ID),
					slog.String("reason", string(res.Reason)))
				return ErrLeadUnavailable
			}
			accepted = res.Lead
			return nil
		},
		func(ctx context.Context) error {
			return uc.Leads.ReleaseAcceptance(ctx, lead.ID, profile.ID, uc.now())
		},
	)
	txn.AddOperation("record_response",
		func(ctx context.Context) error {
			row, err := uc.Recorder.RecordResponded(ctx, profile.ID, lead.ID, entity.InteractionAccepted, "")
			if err != nil {
				if errors.Is(err, entity.ErrAlreadyResponded) {
					return ErrLeadUnavailable
				}
				return storageError("failed to record acceptance", err)
			}
			interaction = row
			return nil
		},
		nil,
	)

	if err := txn.Execute(ctx); err != nil {
		var de *DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		var te *TechnicalError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, storageError("lead acceptance failed", err)
	}

	uc.log.InfoContext(ctx, "lead accepted",
		slog.String("lead_id", accepted.ID), slog.String("freelancer_id", profile.ID))

	uc.afterAccept(context.WithoutCancel(ctx), accepted, profile)

	return &AcceptLeadOutput{Lead: accepted, Interaction: interaction}, nil
}

func (uc *AcceptLeadUseCase) requesterProfile(ctx context.Context, caller entity.Identity) (*entity.FreelancerProfile, error) {
	if caller.Role != entity.RoleFreelancer {
		return nil, forbidden("only freelancers can accept leads")
	}
	profile, err := callerProfile(ctx, uc.Profiles, caller)
	if err != nil {
		return nil, err
	}
	if !profile.Eligible() {
		return nil, forbidden("profile must be approved and available to accept leads")
	}
	return profile, nil
}

// afterAccept is best effort. Nothing here can undo the acceptance.
func (uc *AcceptLeadUseCase) afterAccept(ctx context.Context, lead *entity.Lead, profile *entity.FreelancerProfile) {
	if n, err := uc.Recorder.MarkOthersMissed(ctx, lead.ID, profile.ID, entity.MissedAcceptedByOther); err != nil {
		uc.log.WarnContext(ctx, "failed to mark losing freelancers missed",
			slog.String("lead_id", lead.ID), slog.Any("error", err))
	} else if n > 0 {
		uc.log.InfoContext(ctx, "losing freelancers marked missed",
			slog.String("lead_id", lead.ID), slog.Int64("count", n))
	}

	_, err := uc.Dispatcher.Deliver(ctx, lead.CustomerID, NotificationPayload{
		Type:    entity.NotificationLeadAccepted,
		Title:   "Your lead was accepted",
		Message: "A professional accepted \"" + lead.Title + "\" and will contact you soon.",
		Link:    "/leads/" + lead.ID,
	})
	if err != nil {
		uc.log.WarnContext(ctx, "customer notification failed",
			slog.String("lead_id", lead.ID), slog.Any("error", err))
	}

	if uc.Notices == nil {
		return
	}
	notice := queue.CustomerNotice{
		Event:            queue.NoticeLeadAccepted,
		LeadID:           lead.ID,
		LeadTitle:        lead.Title,
		CustomerID:       lead.CustomerID,
		MobileNumber:     lead.MobileNumber,
		FreelancerID:     profile.ID,
		FreelancerUserID: profile.UserID,
	}
	if err := uc.Notices.PublishCustomerNotice(ctx, notice); err != nil {
		uc.log.WarnContext(ctx, "customer notice not queued",
			slog.String("lead_id", lead.ID), slog.Any("error", err))
	}
}
