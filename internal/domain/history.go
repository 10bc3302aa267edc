package domain

import (
	"context"
	"time"
)

// StatusHistoryEntry is one immutable row of the append-only status ledger.
// Entries are never updated or deleted; replaying the valid entries in order
// reconstructs the application's current status.
// swagger:model StatusHistoryEntry
type StatusHistoryEntry struct {
	ID              string    `json:"id"`
	ApplicationID   string    `json:"application_id"`
	PreviousStatus  Status    `json:"previous_status"`
	NewStatus       Status    `json:"new_status"`
	Note            string    `json:"note"`
	ActorID         *string   `json:"actor_id"`
	ActorName       *string   `json:"actor_name"`
	TransitionValid bool      `json:"transition_valid"`
	CreatedAt       time.Time `json:"created_at"`
}

// StatusHistoryRepository defines storage for the status ledger and the
// atomic transition unit.
type StatusHistoryRepository interface {
	// RecordTransition appends a ledger entry and, for valid attempts,
	// updates the application status in the same transaction. The status
	// update is conditional on the application still holding previousStatus;
	// a lost race returns ErrConflict and commits nothing.
	RecordTransition(ctx context.Context, applicationID string, previousStatus, newStatus Status, valid bool, actorID *string, note string) (*StatusHistoryEntry, error)
	// ListByApplicationID returns all entries newest first, with ActorName
	// resolved from the admins table (name, display name, first+last name,
	// email, in that order of preference).
	ListByApplicationID(ctx context.Context, applicationID string) ([]*StatusHistoryEntry, error)
	// ListRawByApplicationID returns entries without actor resolution, for
	// the degraded two-step read path.
	ListRawByApplicationID(ctx context.Context, applicationID string) ([]*StatusHistoryEntry, error)
}

// Admin is an operator account referenced by ledger entries.
type Admin struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
}

// ResolveName returns the admin's display name using the fallback chain
// name, display name, first+last name, email. Empty when nothing is set.
func (a *Admin) ResolveName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.FirstName != "" || a.LastName != "" {
		full := a.FirstName
		if a.LastName != "" {
			if full != "" {
				full += " "
			}
			full += a.LastName
		}
		return full
	}
	return a.Email
}

// AdminDirectory is the static operator lookup used to attribute ledger
// entries to people.
type AdminDirectory interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*Admin, error)
}
