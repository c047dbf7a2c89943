// Package refreshtokens declares the server-side repository contract for the
// refresh-token records backing session rotation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/portkeeper/portkeeper/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh-token records. Revocation is append-only: a revoked record is
// never un-revoked or otherwise updated.
type Repository interface {
	// Create inserts a record with a placeholder token hash and the given
	// expiry, returning the generated id. The token string embedding this id
	// is computed afterwards and stored with SetTokenHash.
	Create(ctx context.Context, userID string, expiresAt time.Time) (string, error)

	// SetTokenHash stores the secondary hash of the issued token string.
	SetTokenHash(ctx context.Context, id string, tokenHash string) error

	// Find looks up a record by id. Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, id string) (*models.RefreshToken, error)

	// Revoke marks the record revoked iff it is not revoked yet, in a single
	// conditional update, and reports whether this call won the transition.
	// A false return means the record was absent or already revoked.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeAllForUser revokes every non-revoked record owned by the user in
	// one bulk update.
	RevokeAllForUser(ctx context.Context, userID string) error
}
