package repomanager

import (
	"context"
	"database/sql"

	"github.com/portkeeper/portkeeper/internal/dbx"
	"github.com/portkeeper/portkeeper/internal/server/repositories/refreshtokens"
	"github.com/portkeeper/portkeeper/internal/server/repositories/services"
	"github.com/portkeeper/portkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX, so the
// same constructors serve both plain connections and open transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Services(db dbx.DBTX) services.Repository
}
