package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"conreach/internal/domain"
)

const (
	broadcastTemplate = "broadcast"
	// DefaultSubject is used when no broadcast subject is configured.
	DefaultSubject = "A message from the show floor"
)

// Provider adapts a Mailer to domain.MessagingProvider for the email channel.
type Provider struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	subject  string
}

// NewProvider wraps mailer so broadcasts can be delivered to email opt-ins.
func NewProvider(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, subject string) *Provider {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Provider{mailer: mailer, renderer: renderer, subject: subject}
}

// Send renders the broadcast template and mails it. SES refusing the message itself
// is a rejected result; every other failure is a transport fault.
func (p *Provider) Send(ctx context.Context, destination, body string) (domain.SendResult, error) {
	subject, htmlBody, textBody, err := p.renderer.Render(broadcastTemplate, domain.BroadcastEmailData{
		Subject: p.subject,
		Message: body,
	})
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("render broadcast email: %w", err)
	}
	id, err := p.mailer.Send(ctx, destination, subject, htmlBody, textBody)
	if err != nil {
		var rejected *types.MessageRejected
		if errors.As(err, &rejected) {
			reason := rejected.ErrorMessage()
			if reason == "" {
				reason = "rejected"
			}
			return domain.SendResult{Error: reason}, nil
		}
		return domain.SendResult{}, fmt.Errorf("%w: %w", domain.ErrProviderTransport, err)
	}
	return domain.SendResult{Success: true, ProviderMessageID: id}, nil
}
