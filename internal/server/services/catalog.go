package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/logging"
	"github.com/portkeeper/portkeeper/internal/server/models"
	"github.com/portkeeper/portkeeper/internal/server/repositories/repomanager"
	servicesrepo "github.com/portkeeper/portkeeper/internal/server/repositories/services"
)

// CatalogService manages the name/port records shown on the dashboard.
// Deletion is soft: removed records stay in the table but leave every listing.
type CatalogService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewCatalogService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *CatalogService {
	return &CatalogService{
		db:    db,
		repos: repos,
		log:   log.With("service", "catalog"),
	}
}

func (s *CatalogService) List(ctx context.Context) ([]*models.Service, error) {
	list, err := s.repos.Services(s.db).List(ctx)
	if err != nil {
		s.log.Error(ctx, "list services failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repos.Services(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "get service failed", "error", err)
		return nil, common.ErrorInternal
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, name string, port int) (*models.Service, error) {
	svc, err := s.repos.Services(s.db).Create(ctx, name, port)
	if err != nil {
		s.log.Error(ctx, "create service failed", "error", err)
		return nil, common.ErrorInternal
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, name *string, port *int) (*models.Service, error) {
	svc, err := s.repos.Services(s.db).Update(ctx, id, servicesrepo.UpdateParams{Name: name, Port: port})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "update service failed", "error", err)
		return nil, common.ErrorInternal
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	err := s.repos.Services(s.db).SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.log.Error(ctx, "delete service failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
