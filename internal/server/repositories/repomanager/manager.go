package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/droply/internal/dbx"
	"github.com/dmitrijs2005/droply/internal/server/repositories/files"
)

// RepositoryManager vends repositories bound to either the pool or a
// transaction, and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
