package services

import (
	"context"
	"fmt"
	"log/slog"

	"talenttrack/internal/domain"
)

type emailNotificationDispatcher struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailNotificationDispatcher returns a NotificationDispatcher that
// renders the named template with the variable map and sends it by email.
func NewEmailNotificationDispatcher(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.NotificationDispatcher {
	return &emailNotificationDispatcher{mailer: mailer, renderer: renderer, logger: logger}
}

func (d *emailNotificationDispatcher) Dispatch(ctx context.Context, templateID, recipient string, vars map[string]any) error {
	if recipient == "" {
		return fmt.Errorf("notification recipient is empty")
	}
	subject, htmlBody, textBody, err := d.renderer.Render(templateID, vars)
	if err != nil {
		return fmt.Errorf("render template %s: %w", templateID, err)
	}
	if err := d.mailer.Send(recipient, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send notification %s: %w", templateID, err)
	}
	d.logger.Info("notification sent", "template", templateID, "recipient", recipient)
	return nil
}
