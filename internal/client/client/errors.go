package client

import "errors"

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrSessionExpired = errors.New("session expired, log in again")
	ErrEmailTaken     = errors.New("email already registered")
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("invalid request")
)
