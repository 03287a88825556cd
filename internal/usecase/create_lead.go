package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/hirelocal/internal/entity"
)

type CreateLeadInput struct {
	CategoryID   string `json:"category_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	BudgetMin    int    `json:"budget_min"`
	BudgetMax    int    `json:"budget_max"`
	Location     string `json:"location"`
	MobileNumber string `json:"mobile_number"`
}

type DeliveryReport struct {
	Matched         int `json:"matched"`
	Notified        int `json:"notified"`
	AlreadyNotified int `json:"already_notified"`
	LiveDelivered   int `json:"live_delivered"`
	Failed          int `json:"failed"`
}

type CreateLeadOutput struct {
	Lead     *entity.Lead   `json:"lead"`
	Delivery DeliveryReport `json:"delivery"`
}

// DeliveryPipeline offers a lead to every matched freelancer: record the interaction, then
// dispatch. One candidate failing never stops the others.
type DeliveryPipeline struct {
	recorder    *InteractionRecorder
	dispatcher  *Dispatcher
	concurrency int
	log         *slog.Logger
}

func NewDeliveryPipeline(recorder *InteractionRecorder, dispatcher *Dispatcher, concurrency int, log *slog.Logger) *DeliveryPipeline {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DeliveryPipeline{recorder: recorder, dispatcher: dispatcher, concurrency: concurrency, log: log}
}

// Run never returns an error: failures are counted in the report and logged. Candidate
// order is not guaranteed.
func (p *DeliveryPipeline) Run(ctx context.Context, lead *entity.Lead, candidates []*entity.FreelancerProfile) DeliveryReport {
	report := DeliveryReport{Matched: len(candidates)}
	if len(candidates) == 0 {
		p.log.InfoContext(ctx, "no freelancers matched lead",
			slog.String("lead_id", lead.ID), slog.String("category_id", lead.CategoryID))
		return report
	}

	payload := NotificationPayload{
		Type:    entity.NotificationNewLead,
		Title:   "New lead: " + lead.Title,
		Message: newLeadMessage(lead),
		Link:    "/leads/" + lead.ID,
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for _, c := range candidates {
		c := c
		g.Go(func() error {
			created, res, err := p.deliverOne(ctx, lead.ID, c, payload)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				p.log.WarnContext(ctx, "lead delivery failed for freelancer",
					slog.String("lead_id", lead.ID),
					slog.String("freelancer_id", c.ID),
					slog.Any("error", err))
				return nil
			}
			report.Notified++
			if !created {
				report.AlreadyNotified++
			}
			if res.LiveDelivered {
				report.LiveDelivered++
			}
			return nil
		})
	}
	_ = g.Wait()

	p.log.InfoContext(ctx, "lead delivered",
		slog.String("lead_id", lead.ID),
		slog.Int("matched", report.Matched),
		slog.Int("notified", report.Notified),
		slog.Int("live", report.LiveDelivered),
		slog.Int("failed", report.Failed))
	return report
}

func (p *DeliveryPipeline) deliverOne(ctx context.Context, leadID string, c *entity.FreelancerProfile, payload NotificationPayload) (bool, DeliveryResult, error) {
	created, err := p.recorder.RecordNotified(ctx, c.ID, leadID)
	if err != nil {
		return false, DeliveryResult{}, err
	}
	// a redelivered pair still gets a notification: delivery is at-least-once
	res, err := p.dispatcher.Deliver(ctx, c.UserID, payload)
	if err != nil {
		return created, DeliveryResult{}, err
	}
	return created, res, nil
}

func newLeadMessage(l *entity.Lead) string {
	msg := l.Title
	if l.Location != "" {
		msg += " in " + l.Location
	}
	if l.BudgetMax > 0 {
		msg += fmt.Sprintf(" (budget %d-%d)", l.BudgetMin, l.BudgetMax)
	}
	return msg
}

type CreateLeadUseCase struct {
	Leads    entity.LeadRepository
	Matcher  *Matcher
	Pipeline *DeliveryPipeline
	log      *slog.Logger
}

func NewCreateLeadUseCase(leads entity.LeadRepository, matcher *Matcher, pipeline *DeliveryPipeline, log *slog.Logger) *CreateLeadUseCase {
	return &CreateLeadUseCase{Leads: leads, Matcher: matcher, Pipeline: pipeline, log: log}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, caller entity.Identity, input CreateLeadInput) (*CreateLeadOutput, error) {
	if caller.Role != entity.RoleCustomer && caller.Role != entity.RoleAdmin {
		return nil, forbidden("only customers can post leads")
	}
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationError(joinValidationErrors(errs))
	}

	lead, err := entity.NewLead(caller.UserID, input.CategoryID, input.Title, input.Description,
		input.Location, input.MobileNumber, input.BudgetMin, input.BudgetMax)
	if err != nil {
		return nil, validationError(err.Error())
	}

	// matching is a pure read, so it runs first: a storage failure here leaves nothing behind
	candidates, err := uc.Matcher.Match(ctx, lead.CategoryID, lead.Location)
	if err != nil {
		if IsDomainError(err) {
			return nil, err
		}
		return nil, storageError("failed to match freelancers", err)
	}

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, storageError("failed to persist lead", err)
	}
	uc.log.InfoContext(ctx, "lead created",
		slog.String("lead_id", lead.ID), slog.String("customer_id", lead.CustomerID))

	// delivery outlives the request: a client hanging up must not cut the fan-out short
	report := uc.Pipeline.Run(context.WithoutCancel(ctx), lead, candidates)

	return &CreateLeadOutput{Lead: lead, Delivery: report}, nil
}
