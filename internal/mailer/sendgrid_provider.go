package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridProvider implements email sending via SendGrid
type SendGridProvider struct {
	from     string
	fromName string
	client   *sendgrid.Client
}

// NewSendGridProvider creates a new SendGrid email provider
func NewSendGridProvider(apiKey, from, fromName string) *SendGridProvider {
	return &SendGridProvider{
		from:     from,
		fromName: fromName,
		client:   sendgrid.NewSendClient(apiKey),
	}
}

// Send sends an email via SendGrid
func (p *SendGridProvider) Send(ctx context.Context, message *Message) error {
	from := mail.NewEmail(p.fromName, p.from)
	if message.From != "" {
		fromName := message.FromName
		if fromName == "" {
			fromName = message.From
		}
		from = mail.NewEmail(fromName, message.From)
	}

	to := mail.NewEmail("", message.To)
	m := mail.NewSingleEmail(from, message.Subject, to, message.Body, message.BodyHTML)

	if message.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", message.ReplyTo))
	}

	// Disable click tracking so transactional links are not rewritten
	trackingSettings := mail.NewTrackingSettings()
	clickTracking := mail.NewClickTrackingSetting()
	clickTracking.SetEnable(false)
	clickTracking.SetEnableText(false)
	trackingSettings.SetClickTracking(clickTracking)
	m.SetTrackingSettings(trackingSettings)

	resp, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// GetName returns the provider name
func (p *SendGridProvider) GetName() string {
	return "SendGrid"
}
