package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/portkeeper/portkeeper/internal/token"
)

// Identity is the authenticated caller, taken entirely from the access token.
// No store lookup happens on the request path.
type Identity struct {
	ID    string
	Email string
}

type contextKey struct{}

var identityKey contextKey

// IdentityFromContext returns the identity attached by the Authenticator.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticator guards a route subtree with Bearer access tokens. Any failure
// is a uniform 401: missing header, malformed token, forged token, expired
// token, or a refresh token presented in place of an access token.
func Authenticator(codec *token.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			payload, err := codec.DecryptAccess(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			identity := Identity{ID: payload.UserID, Email: payload.Email}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}
