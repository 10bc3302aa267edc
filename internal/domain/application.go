package domain

import (
	"context"
	"time"
)

// Application represents a candidate's job application.
// swagger:model Application
type Application struct {
	ID             string    `json:"id"`
	CandidateEmail string    `json:"candidate_email"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewApplication returns a new Application. ID is typically set by the repository on create.
func NewApplication(candidateEmail string, status Status, createdAt, updatedAt time.Time) *Application {
	return &Application{
		CandidateEmail: candidateEmail,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// ApplicationRepository defines the interface for application storage.
// Applications are created and deleted by the wider recruiting system;
// this subsystem only reads them and mutates status through the workflow.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*Application, error)
	// GetLatestByEmail returns the most recently submitted application for
	// the given candidate email.
	GetLatestByEmail(ctx context.Context, email string) (*Application, error)
}

// TransitionResult bundles the recorded ledger entry with the status the
// application holds after the attempt.
type TransitionResult struct {
	Entry  *StatusHistoryEntry `json:"entry"`
	Status Status              `json:"status"`
}

// StatusWorkflowService defines the business logic for application status
// transitions and history reads.
type StatusWorkflowService interface {
	// RequestTransition validates the requested status against the current
	// one, records the attempt in the ledger (valid or not), and mutates the
	// application status only for valid attempts. actorID is nil for
	// system-initiated transitions.
	RequestTransition(ctx context.Context, applicationID string, requested Status, actorID *string, note string) (*TransitionResult, error)
	// RequestLegacyTransition accepts the legacy three-value vocabulary and
	// follows the canonical path after mapping.
	RequestLegacyTransition(ctx context.Context, applicationID string, requested LegacyStatus, actorID *string, note string) (*TransitionResult, error)
	// GetHistory returns the full ledger for an application, newest first,
	// with actor display names resolved.
	GetHistory(ctx context.Context, applicationID string) ([]*StatusHistoryEntry, error)
}
