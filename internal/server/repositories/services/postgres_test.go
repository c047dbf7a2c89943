package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/portkeeper/portkeeper/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func serviceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "port", "deleted_at", "created_at", "updated_at"})
}

func TestList_ReturnsActiveOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)SELECT\s+id,\s*name,\s*port,\s*deleted_at,\s*created_at,\s*updated_at\s+FROM\s+services\s+WHERE\s+deleted_at\s+IS\s+NULL\s+ORDER\s+BY\s+created_at`

	now := time.Now()
	mock.ExpectQuery(q).WillReturnRows(serviceRows().
		AddRow("s-1", "postgres", 5432, nil, now, now).
		AddRow("s-2", "redis", 6379, nil, now, now))

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "postgres" || list[1].Port != 6379 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*name,\s*port`).WillReturnRows(serviceRows())

	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*name,\s*port`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestCreate_ReturnsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)INSERT\s+INTO\s+services\s*\(name,\s*port\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("grafana", 3000).
		WillReturnRows(serviceRows().AddRow("s-3", "grafana", 3000, nil, now, now))

	s, err := repo.Create(context.Background(), "grafana", 3000)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if s.ID != "s-3" || s.Port != 3000 {
		t.Fatalf("unexpected service: %+v", s)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+services\s+SET\s+name\s*=\s*COALESCE\(\$2,\s*name\),\s*port\s*=\s*COALESCE\(\$3,\s*port\)`

	port := 5433
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("s-1", nil, port).
		WillReturnRows(serviceRows().AddRow("s-1", "postgres", 5433, nil, now, now))

	s, err := repo.Update(context.Background(), "s-1", UpdateParams{Port: &port})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if s.Port != 5433 || s.Name != "postgres" {
		t.Fatalf("unexpected service: %+v", s)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	name := "renamed"
	mock.ExpectQuery(`UPDATE\s+services\s+SET\s+name`).
		WithArgs("ghost", name, nil).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), "ghost", UpdateParams{Name: &name})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSoftDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+services\s+SET\s+deleted_at\s*=\s*now\(\),\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+deleted_at\s+IS\s+NULL`

	mock.ExpectExec(q).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SoftDelete(context.Background(), "s-1"); err != nil {
		t.Fatalf("SoftDelete error: %v", err)
	}
}

func TestSoftDelete_AlreadyDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+services\s+SET\s+deleted_at`).
		WithArgs("s-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "s-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*name,\s*port`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
