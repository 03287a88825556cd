package mail

import (
	"context"

	"github.com/xavierca1/hirelocal/internal/infra/integration/whatsapp"
)

const leadAcceptedTemplate = "lead_accepted"

type WhatsAppSender struct {
	client *whatsapp.Client
}

func NewWhatsAppSender(client *whatsapp.Client) *WhatsAppSender {
	return &WhatsAppSender{client: client}
}

func (s *WhatsAppSender) Enabled() bool {
	return s != nil && s.client != nil && s.client.Configured()
}

// SendLeadAccepted messages the mobile number the customer left on the lead.
func (s *WhatsAppSender) SendLeadAccepted(ctx context.Context, phone, customerName, leadTitle, freelancerName string) error {
	return s.client.SendMessage(ctx, whatsapp.SendMessageInput{
		PhoneNumber:  whatsapp.NormalizeIndianNumber(phone),
		TemplateName: leadAcceptedTemplate,
		Parameters:   []string{customerName, leadTitle, freelancerName},
	})
}
