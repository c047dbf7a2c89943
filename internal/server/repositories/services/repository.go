// Package services declares the repository contract for the name/port
// records managed through the dashboard.
package services

import (
	"context"

	"github.com/portkeeper/portkeeper/internal/server/models"
)

// UpdateParams carries a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Name *string
	Port *int
}

type Repository interface {
	// List returns all non-soft-deleted services.
	List(ctx context.Context) ([]*models.Service, error)

	// Get looks up a service by id. Returns common.ErrorNotFound when absent.
	Get(ctx context.Context, id string) (*models.Service, error)

	// Create inserts a new service and returns it with the generated id.
	Create(ctx context.Context, name string, port int) (*models.Service, error)

	// Update applies a partial update and returns the updated row.
	Update(ctx context.Context, id string, params UpdateParams) (*models.Service, error)

	// SoftDelete marks the service deleted without removing the row.
	SoftDelete(ctx context.Context, id string) error
}
