// Package repomanager vends the store implementations used by the services
// and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkokor/jwt-based-access-management/internal/dbx"
	"github.com/mkokor/jwt-based-access-management/internal/server/repositories/refreshtokens"
	"github.com/mkokor/jwt-based-access-management/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so the same
// repository code runs against *sql.DB and inside transactions.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
