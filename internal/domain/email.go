package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with
// the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ModerationOutcomeEmailData holds data for the email sent to an
// initiator after an admin publishes or rejects their event.
type ModerationOutcomeEmailData struct {
	Email      string
	EventTitle string
	Published  bool
}

// EmailService defines the contract for sending domain-level emails.
// All sends are best-effort: a failure is logged and never propagated
// into the decision that triggered it.
type EmailService interface {
	SendModerationOutcome(ctx context.Context, data *ModerationOutcomeEmailData) error
}
