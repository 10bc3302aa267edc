package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"talenttrack/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestApplicationRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Application
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "candidate_email", "status", "created_at", "updated_at"}).
					AddRow("app-1", "jane@example.com", "under_review", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
				mock.ExpectQuery(`FROM applications`).
					WithArgs("app-1").
					WillReturnRows(rows)
			},
			want: &domain.Application{ID: "app-1", CandidateEmail: "jane@example.com", Status: domain.StatusUnderReview},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM applications`).
					WithArgs("missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewApplicationRepository(db)
			id := "app-1"
			if tt.wantErr != nil {
				id = "missing"
			}
			app, err := repo.GetByID(ctx, id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want.ID, app.ID)
			require.Equal(t, tt.want.Status, app.Status)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestApplicationRepository_GetLatestByEmail(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Lookup is case and whitespace insensitive on the caller side.
	rows := sqlmock.NewRows([]string{"id", "candidate_email", "status", "created_at", "updated_at"}).
		AddRow("app-2", "Jane@Example.com", "shortlisted", time.Now(), time.Now())
	mock.ExpectQuery(`LOWER\(candidate_email\)`).
		WithArgs("jane@example.com").
		WillReturnRows(rows)

	repo := NewApplicationRepository(db)
	app, err := repo.GetLatestByEmail(ctx, "  Jane@Example.com ")
	require.NoError(t, err)
	require.Equal(t, "app-2", app.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_GetLatestByEmail_NotFound(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`LOWER\(candidate_email\)`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewApplicationRepository(db)
	_, err = repo.GetLatestByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
