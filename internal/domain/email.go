package domain

import "context"

// Mailer sends one email and returns the gateway's message id (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) (messageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// BroadcastEmailData holds data for the broadcast email template.
type BroadcastEmailData struct {
	Subject string
	Message string
}
