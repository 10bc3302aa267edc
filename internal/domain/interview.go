package domain

import (
	"context"
	"time"
)

// InterviewStatus tracks the lifecycle of one scheduled interview.
type InterviewStatus string

// Interview statuses.
const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
)

// Interview represents one scheduled interview, keyed by the provider's
// event identifier. At most one row exists per CalendlyEventID no matter how
// many times the creating event is delivered.
// swagger:model Interview
type Interview struct {
	ID               string          `json:"id"`
	ApplicationID    string          `json:"application_id"`
	CalendlyEventID  string          `json:"calendly_event_id"`
	CandidateEmail   string          `json:"candidate_email"`
	InterviewerEmail *string         `json:"interviewer_email"`
	ScheduledTime    time.Time       `json:"scheduled_time"`
	MeetingURL       *string         `json:"meeting_url"`
	Status           InterviewStatus `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewInterview returns a new scheduled Interview. ID is set by the repository on create.
func NewInterview(applicationID, calendlyEventID, candidateEmail string, interviewerEmail *string, scheduledTime time.Time, meetingURL *string, createdAt, updatedAt time.Time) *Interview {
	return &Interview{
		ApplicationID:    applicationID,
		CalendlyEventID:  calendlyEventID,
		CandidateEmail:   candidateEmail,
		InterviewerEmail: interviewerEmail,
		ScheduledTime:    scheduledTime,
		MeetingURL:       meetingURL,
		Status:           InterviewScheduled,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// InterviewRepository defines storage for interviews. Writers from both the
// webhook and the reconciliation poller go through CreateScheduledWithTransition,
// so whichever path wins the race for an event converges to the same row.
type InterviewRepository interface {
	// CreateScheduledWithTransition inserts the interview and, in the same
	// transaction, applies the application status change and appends the
	// ledger entry. A row already present for the interview's
	// CalendlyEventID makes the whole call a no-op returning
	// ErrDuplicateEvent with created=false.
	// The status update is conditional on previousStatus; a lost race
	// returns ErrConflict and commits nothing.
	CreateScheduledWithTransition(ctx context.Context, iv *Interview, previousStatus, newStatus Status, valid bool, actorID *string, note string) (created bool, err error)
	GetByEventID(ctx context.Context, calendlyEventID string) (*Interview, error)
	// UpdateStatusByEventID sets the status of the interview with the given
	// event identifier. Returns ErrNotFound when no such row exists.
	UpdateStatusByEventID(ctx context.Context, calendlyEventID string, status InterviewStatus) error
	ListByApplicationID(ctx context.Context, applicationID string) ([]*Interview, error)
}

// CalendarSyncService applies provider events to local state. The webhook
// handler and the reconciliation poller share these operations so both paths
// are idempotent by construction.
type CalendarSyncService interface {
	// ApplyInviteeCreated resolves the target application by candidate email
	// and creates the interview plus the interview_scheduled transition as
	// one unit. Duplicate deliveries are no-ops.
	ApplyInviteeCreated(ctx context.Context, ev *InviteeEvent) (*Interview, error)
	// ApplyInviteeCanceled marks the targeted interview cancelled. The
	// application status is left untouched.
	ApplyInviteeCanceled(ctx context.Context, calendlyEventID string) error
	// Reconcile lists provider events for the lookback window and converges
	// local interview rows toward them. It never deletes local rows.
	Reconcile(ctx context.Context) (*ReconcileReport, error)
	ListInterviews(ctx context.Context, applicationID string) ([]*Interview, error)
}

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	RunID         string `json:"run_id"`
	EventsSeen    int    `json:"events_seen"`
	Created       int    `json:"created"`
	StatusUpdated int    `json:"status_updated"`
	Skipped       int    `json:"skipped"`
}
