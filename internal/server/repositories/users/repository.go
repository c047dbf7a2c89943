// Package users declares the server-side repository contract for identity
// records in persistent storage.
package users

import (
	"context"

	"github.com/portkeeper/portkeeper/internal/server/models"
)

// Repository defines operations on user records. Emails passed in are
// expected to be normalized (lowercase) by the caller.
type Repository interface {
	// Create inserts a new user and returns it with the generated id.
	// A duplicate email yields common.ErrorEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetActiveByEmail looks up a non-soft-deleted user by email.
	// Returns common.ErrorNotFound when absent or deactivated.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks up a user by id, including soft-deleted ones, so callers
	// can distinguish a deactivated account from a missing one.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
