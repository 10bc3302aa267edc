package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Notification template identifiers used by the workflow.
const (
	TemplateInterviewScheduled  = "interview_scheduled"
	TemplateApplicationHired    = "application_hired"
	TemplateApplicationRejected = "application_rejected"
)

// NotificationDispatcher sends a templated notification to a recipient.
// The workflow invokes it with a template identifier and a variable map; the
// template text itself is owned by the notification system.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, templateID, recipient string, vars map[string]any) error
}
