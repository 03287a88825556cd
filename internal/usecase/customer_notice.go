package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xavierca1/hirelocal/internal/entity"
	"github.com/xavierca1/hirelocal/internal/infra/mail"
	"github.com/xavierca1/hirelocal/internal/infra/queue"
)

type CustomerMailer interface {
	Enabled() bool
	SendLeadAccepted(to string, data mail.LeadAcceptedEmailData) error
}

type CustomerMessenger interface {
	Enabled() bool
	SendLeadAccepted(ctx context.Context, phone, customerName, leadTitle, freelancerName string) error
}

// CustomerNoticeHandler consumes queued customer notices and reaches the customer by email
// and WhatsApp. A channel that is not configured is skipped.
type CustomerNoticeHandler struct {
	Users     entity.UserRepository
	Mailer    CustomerMailer
	Messenger CustomerMessenger
	log       *slog.Logger
}

func NewCustomerNoticeHandler(users entity.UserRepository, mailer CustomerMailer, messenger CustomerMessenger, log *slog.Logger) *CustomerNoticeHandler {
	return &CustomerNoticeHandler{Users: users, Mailer: mailer, Messenger: messenger, log: log}
}

func (h *CustomerNoticeHandler) HandleCustomerNotice(ctx context.Context, n queue.CustomerNotice) error {
	if n.Event != queue.NoticeLeadAccepted {
		h.log.InfoContext(ctx, "ignoring customer notice", slog.String("event", n.Event))
		return nil
	}

	customer, err := h.Users.FindByID(ctx, n.CustomerID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return fmt.Errorf("customer %s: %w", n.CustomerID, queue.ErrPermanent)
		}
		return fmt.Errorf("load customer: %w", err)
	}

	freelancerName := "A professional"
	if n.FreelancerUserID != "" {
		if fu, err := h.Users.FindByID(ctx, n.FreelancerUserID); err == nil && fu.Name != "" {
			freelancerName = fu.Name
		}
	}

	var errs []error

	if h.Mailer != nil && h.Mailer.Enabled() && customer.Email != "" {
		err := h.Mailer.SendLeadAccepted(customer.Email, mail.LeadAcceptedEmailData{
			CustomerName:   customer.Name,
			LeadTitle:      n.LeadTitle,
			LeadLink:       "/leads/" + n.LeadID,
			FreelancerName: freelancerName,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	phone := n.MobileNumber
	if phone == "" {
		phone = customer.Phone
	}
	if h.Messenger != nil && h.Messenger.Enabled() && phone != "" {
		if err := h.Messenger.SendLeadAccepted(ctx, phone, customer.Name, n.LeadTitle, freelancerName); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp: %w", err))
		}
	}

	return errors.Join(errs...)
}
