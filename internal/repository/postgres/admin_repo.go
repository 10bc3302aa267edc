package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"talenttrack/internal/domain"
)

type adminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) domain.AdminDirectory {
	return &adminRepository{
		DB: db,
	}
}

// GetByIDs batch-loads admins for the given ids. Unknown ids are simply
// absent from the returned map.
func (r *adminRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Admin, error) {
	result := make(map[string]*domain.Admin)
	if len(ids) == 0 {
		return result, nil
	}
	query := `
		SELECT id, COALESCE(name, ''), COALESCE(display_name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, '')
		FROM admins
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a := &domain.Admin{}
		if err := rows.Scan(&a.ID, &a.Name, &a.DisplayName, &a.FirstName, &a.LastName, &a.Email); err != nil {
			return nil, err
		}
		result[a.ID] = a
	}
	return result, rows.Err()
}
