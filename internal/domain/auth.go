package domain

import "time"

// TokenIssuer issues bearer tokens for an admin. Kept at the boundary:
// admin identity management itself lives outside this subsystem.
type TokenIssuer interface {
	Issue(adminID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the admin ID it was
// issued for.
type TokenVerifier interface {
	Verify(token string) (adminID string, err error)
}
