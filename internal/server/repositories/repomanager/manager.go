// Package repomanager vends repositories bound to either the pool or an open
// transaction, so services decide the transaction boundary.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/feedbox/internal/dbx"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/boxes"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/feedbox/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Boxes(db dbx.DBTX) boxes.Repository
	Submissions(db dbx.DBTX) submissions.Repository
}
