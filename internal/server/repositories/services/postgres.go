package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/portkeeper/portkeeper/internal/common"
	"github.com/portkeeper/portkeeper/internal/dbx"
	"github.com/portkeeper/portkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Service, error) {
	query := `
		SELECT id, name, port, deleted_at, created_at, updated_at
		FROM services
		WHERE deleted_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Service
	for rows.Next() {
		s := &models.Service{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Port, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Service, error) {
	query := `
		SELECT id, name, port, deleted_at, created_at, updated_at
		FROM services
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, name string, port int) (*models.Service, error) {
	query := `
		INSERT INTO services (name, port)
		VALUES ($1, $2)
		RETURNING id, name, port, deleted_at, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name, port))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, params UpdateParams) (*models.Service, error) {
	query := `
		UPDATE services
		SET name = COALESCE($2, name),
		    port = COALESCE($3, port),
		    updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id, name, port, deleted_at, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, params.Name, params.Port))
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE services
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(&s.ID, &s.Name, &s.Port, &s.DeletedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
