package postgres

import (
	"context"
	"database/sql"
	"errors"

	"talenttrack/internal/domain"
)

type providerSettingsRepository struct {
	DB *sql.DB
}

func NewProviderSettingsRepository(db *sql.DB) domain.ProviderSettingsRepository {
	return &providerSettingsRepository{
		DB: db,
	}
}

// Get reads the singleton Calendly settings row.
func (r *providerSettingsRepository) Get(ctx context.Context) (*domain.ProviderSettings, error) {
	query := `
		SELECT api_token, organization_uri, default_event_type
		FROM provider_settings
		ORDER BY updated_at DESC
		LIMIT 1
	`
	s := &domain.ProviderSettings{}
	var defaultEventType sql.NullString
	err := r.DB.QueryRowContext(ctx, query).
		Scan(&s.APIToken, &s.OrganizationURI, &defaultEventType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if defaultEventType.Valid {
		s.DefaultEventType = &defaultEventType.String
	}
	return s, nil
}
