package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"talenttrack/internal/domain"
)

type applicationRepository struct {
	DB *sql.DB
}

func NewApplicationRepository(db *sql.DB) domain.ApplicationRepository {
	return &applicationRepository{
		DB: db,
	}
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `
		SELECT id, candidate_email, status, created_at, updated_at
		FROM applications
		WHERE id = $1
	`
	a := &domain.Application{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.CandidateEmail, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *applicationRepository) GetLatestByEmail(ctx context.Context, email string) (*domain.Application, error) {
	addr := strings.ToLower(strings.TrimSpace(email))
	query := `
		SELECT id, candidate_email, status, created_at, updated_at
		FROM applications
		WHERE LOWER(candidate_email) = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	a := &domain.Application{}
	err := r.DB.QueryRowContext(ctx, query, addr).
		Scan(&a.ID, &a.CandidateEmail, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
