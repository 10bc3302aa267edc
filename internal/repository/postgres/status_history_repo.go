package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"talenttrack/internal/domain"
)

type statusHistoryRepository struct {
	DB *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) domain.StatusHistoryRepository {
	return &statusHistoryRepository{
		DB: db,
	}
}

// RecordTransition appends a ledger entry and, for valid attempts, updates
// the application row in the same transaction. The UPDATE is conditional on
// the application still holding previousStatus so two near-simultaneous
// transitions cannot both succeed; the loser gets ErrConflict with nothing
// committed.
func (r *statusHistoryRepository) RecordTransition(ctx context.Context, applicationID string, previousStatus, newStatus domain.Status, valid bool, actorID *string, note string) (*domain.StatusHistoryEntry, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback()

	if valid {
		res, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, newStatus, applicationID, previousStatus)
		if err != nil {
			return nil, fmt.Errorf("update application status: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("update application status: %w", err)
		}
		if rows == 0 {
			return nil, domain.ErrConflict
		}
	}

	entry := &domain.StatusHistoryEntry{
		ApplicationID:   applicationID,
		PreviousStatus:  previousStatus,
		NewStatus:       newStatus,
		Note:            note,
		ActorID:         actorID,
		TransitionValid: valid,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO status_history (application_id, previous_status, new_status, note, actor_id, transition_valid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, applicationID, previousStatus, newStatus, note, actorID, valid).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}
	return entry, nil
}

func (r *statusHistoryRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]*domain.StatusHistoryEntry, error) {
	query := `
		SELECT h.id, h.application_id, h.previous_status, h.new_status, h.note, h.actor_id, h.transition_valid, h.created_at,
		       COALESCE(
		           NULLIF(a.name, ''),
		           NULLIF(a.display_name, ''),
		           NULLIF(TRIM(CONCAT(a.first_name, ' ', a.last_name)), ''),
		           NULLIF(a.email, '')
		       ) AS actor_name
		FROM status_history h
		LEFT JOIN admins a ON a.id = h.actor_id
		WHERE h.application_id = $1
		ORDER BY h.created_at DESC, h.id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.StatusHistoryEntry, 0)
	for rows.Next() {
		e := &domain.StatusHistoryEntry{}
		var actorID, actorName sql.NullString
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.PreviousStatus, &e.NewStatus, &e.Note, &actorID, &e.TransitionValid, &e.CreatedAt, &actorName); err != nil {
			return nil, err
		}
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		if actorName.Valid {
			e.ActorName = &actorName.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *statusHistoryRepository) ListRawByApplicationID(ctx context.Context, applicationID string) ([]*domain.StatusHistoryEntry, error) {
	query := `
		SELECT id, application_id, previous_status, new_status, note, actor_id, transition_valid, created_at
		FROM status_history
		WHERE application_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.StatusHistoryEntry, 0)
	for rows.Next() {
		e := &domain.StatusHistoryEntry{}
		var actorID sql.NullString
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.PreviousStatus, &e.NewStatus, &e.Note, &actorID, &e.TransitionValid, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
