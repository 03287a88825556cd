package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from, baseURL string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		BaseURL:  baseURL,
	}
}

// Enabled reports whether an SMTP host is configured.
func (s *EmailSender) Enabled() bool {
	return s != nil && s.Host != ""
}

func (s *EmailSender) SendLeadAccepted(to string, data LeadAcceptedEmailData) error {
	m, err := s.leadAcceptedMessage(to, data)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email over SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) leadAcceptedMessage(to string, data LeadAcceptedEmailData) (*gomail.Message, error) {
	if data.LeadLink != "" && s.BaseURL != "" {
		data.LeadLink = s.BaseURL + data.LeadLink
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "lead_accepted.html", data); err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s accepted your request", data.FreelancerName))
	m.SetBody("text/html", body.String())
	return m, nil
}
