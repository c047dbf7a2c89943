package models

import "time"

// RefreshToken is one row per issued refresh token. TokenHash holds the
// secondary hash of the issued token string; the raw token is never stored.
// A record is usable iff RevokedAt is nil and ExpiresAt is in the future and
// the owning user is not soft-deleted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
