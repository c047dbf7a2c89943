package models

import "time"

// User is an identity record. DeletedAt marks soft-deleted (deactivated)
// accounts; rows are never physically removed.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DeletedAt    *time.Time
	CreatedAt    time.Time
}
