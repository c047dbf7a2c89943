// Package client implements the HTTP client for the PortKeeper API, including
// transparent access-token refresh with retry.
package client

import "context"

// Service is a catalog entry as the client sees it.
type Service struct {
	ID   string
	Name string
	Port int
}

// Client is the operation surface the CLI drives.
type Client interface {
	Signup(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	ListServices(ctx context.Context) ([]Service, error)
	AddService(ctx context.Context, name string, port int) (*Service, error)
	RemoveService(ctx context.Context, id string) error
}
