// Package common defines shared constants and sentinel errors used across
// client and server layers of PortKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorEmailTaken = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Session-level errors. The decode-layer failures of the token codec are
	// collapsed into ErrorInvalidRefreshToken before they reach callers.
	ErrorInvalidCredentials  = errors.New("invalid credentials")
	ErrorInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired   = errors.New("refresh token expired")
	ErrAccountDeactivated    = errors.New("account deactivated")

	// Codec-level errors (invalid, forged, or expired token strings).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
