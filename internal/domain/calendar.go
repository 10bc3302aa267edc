package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ProviderSettings is the singleton Calendly configuration row. This
// subsystem only reads it.
type ProviderSettings struct {
	APIToken         string  `json:"-"`
	OrganizationURI  string  `json:"organization_uri"`
	DefaultEventType *string `json:"default_event_type"`
}

// ProviderSettingsRepository reads the singleton provider configuration.
type ProviderSettingsRepository interface {
	Get(ctx context.Context) (*ProviderSettings, error)
}

// Scheduled event statuses as reported by Calendly.
const (
	ProviderEventActive   = "active"
	ProviderEventCanceled = "canceled"
)

// ScheduledEvent is a Calendly scheduled event, validated at the client
// boundary. URI doubles as the external event identifier.
type ScheduledEvent struct {
	URI        string    `json:"uri"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	MeetingURL string    `json:"meeting_url"`
	// GuestEmails and MemberEmails are flattened from event_guests and
	// event_memberships; first entries are candidate and interviewer.
	GuestEmails  []string `json:"guest_emails"`
	MemberEmails []string `json:"member_emails"`
}

// EventType is a Calendly event type (e.g. "Technical Interview, 45 min").
type EventType struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Active   bool   `json:"active"`
}

// ProviderUser is the authenticated Calendly user.
type ProviderUser struct {
	URI   string `json:"uri"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventWindow bounds a scheduled-events listing. Zero values mean unbounded
// on that side.
type EventWindow struct {
	MinStartTime time.Time
	MaxStartTime time.Time
}

// CalendarProvider is the read contract over the scheduling provider's API.
// Implementations validate provider JSON before returning it and never retry;
// retry and backoff belong to the reconciliation poller.
type CalendarProvider interface {
	ListScheduledEvents(ctx context.Context, window EventWindow) ([]*ScheduledEvent, error)
	ListEventTypes(ctx context.Context) ([]*EventType, error)
	GetCurrentUser(ctx context.Context) (*ProviderUser, error)
	// Passthrough performs the named gateway action and returns the
	// provider's raw JSON body together with the provider's HTTP status.
	Passthrough(ctx context.Context, action string) (json.RawMessage, int, error)
}

// InviteeEvent is a webhook notification after strict boundary validation.
// No untyped provider JSON travels past the ingestor.
type InviteeEvent struct {
	Kind             string // "invitee.created" or "invitee.canceled"
	EventURI         string
	StartTime        time.Time
	MeetingURL       *string
	CandidateEmail   string
	InterviewerEmail *string
}
