package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"talenttrack/internal/domain"
)

type interviewRepository struct {
	DB *sql.DB
}

func NewInterviewRepository(db *sql.DB) domain.InterviewRepository {
	return &interviewRepository{
		DB: db,
	}
}

// CreateScheduledWithTransition inserts the interview row and applies the
// application status change plus ledger entry in one transaction. The insert
// is keyed by the unique calendly_event_id: a duplicate delivery hits the
// ON CONFLICT arm, nothing is written, and ErrDuplicateEvent is returned so
// the caller treats the delivery as already applied.
func (r *interviewRepository) CreateScheduledWithTransition(ctx context.Context, iv *domain.Interview, previousStatus, newStatus domain.Status, valid bool, actorID *string, note string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin interview tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO interviews (application_id, calendly_event_id, candidate_email, interviewer_email, scheduled_time, meeting_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (calendly_event_id) DO NOTHING
		RETURNING id
	`, iv.ApplicationID, iv.CalendlyEventID, iv.CandidateEmail, iv.InterviewerEmail, iv.ScheduledTime, iv.MeetingURL, iv.Status, iv.CreatedAt, iv.UpdatedAt).
		Scan(&iv.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict arm taken: the event was already applied.
			return false, domain.ErrDuplicateEvent
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, domain.ErrDuplicateEvent
		}
		return false, fmt.Errorf("insert interview: %w", err)
	}

	if valid {
		res, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
		`, newStatus, iv.ApplicationID, previousStatus)
		if err != nil {
			return false, fmt.Errorf("update application status: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("update application status: %w", err)
		}
		if rows == 0 {
			return false, domain.ErrConflict
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO status_history (application_id, previous_status, new_status, note, actor_id, transition_valid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, iv.ApplicationID, previousStatus, newStatus, note, actorID, valid); err != nil {
		return false, fmt.Errorf("insert history entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit interview tx: %w", err)
	}
	return true, nil
}

func (r *interviewRepository) GetByEventID(ctx context.Context, calendlyEventID string) (*domain.Interview, error) {
	query := `
		SELECT id, application_id, calendly_event_id, candidate_email, interviewer_email, scheduled_time, meeting_url, status, created_at, updated_at
		FROM interviews
		WHERE calendly_event_id = $1
	`
	iv := &domain.Interview{}
	var interviewer, meetingURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, calendlyEventID).
		Scan(&iv.ID, &iv.ApplicationID, &iv.CalendlyEventID, &iv.CandidateEmail, &interviewer, &iv.ScheduledTime, &meetingURL, &iv.Status, &iv.CreatedAt, &iv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if interviewer.Valid {
		iv.InterviewerEmail = &interviewer.String
	}
	if meetingURL.Valid {
		iv.MeetingURL = &meetingURL.String
	}
	return iv, nil
}

func (r *interviewRepository) UpdateStatusByEventID(ctx context.Context, calendlyEventID string, status domain.InterviewStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE interviews
		SET status = $1, updated_at = NOW()
		WHERE calendly_event_id = $2
	`, status, calendlyEventID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *interviewRepository) ListByApplicationID(ctx context.Context, applicationID string) ([]*domain.Interview, error) {
	query := `
		SELECT id, application_id, calendly_event_id, candidate_email, interviewer_email, scheduled_time, meeting_url, status, created_at, updated_at
		FROM interviews
		WHERE application_id = $1
		ORDER BY scheduled_time DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interviews := make([]*domain.Interview, 0)
	for rows.Next() {
		iv := &domain.Interview{}
		var interviewer, meetingURL sql.NullString
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.CalendlyEventID, &iv.CandidateEmail, &interviewer, &iv.ScheduledTime, &meetingURL, &iv.Status, &iv.CreatedAt, &iv.UpdatedAt); err != nil {
			return nil, err
		}
		if interviewer.Valid {
			iv.InterviewerEmail = &interviewer.String
		}
		if meetingURL.Valid {
			iv.MeetingURL = &meetingURL.String
		}
		interviews = append(interviews, iv)
	}
	return interviews, rows.Err()
}
