package services

import (
	"context"
	"fmt"
	"log/slog"

	"explorewithme/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and
// template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendModerationOutcome notifies an initiator that their event was
// published or rejected, using the "moderation_outcome" template.
func (s *emailService) SendModerationOutcome(ctx context.Context, data *domain.ModerationOutcomeEmailData) error {
	if data == nil {
		return fmt.Errorf("moderation outcome data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("moderation_outcome", data)
	if err != nil {
		return fmt.Errorf("render moderation_outcome template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send moderation outcome email: %w", err)
	}
	s.logger.Info("moderation outcome email sent", "to", data.Email, "published", data.Published)
	return nil
}
