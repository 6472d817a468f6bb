// Package repomanager vends repository implementations bound to a shared
// database handle and exposes the schema migration hook.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/swapcloset/swapcloset/internal/dbx"
	"github.com/swapcloset/swapcloset/internal/repositories/categories"
	"github.com/swapcloset/swapcloset/internal/repositories/listings"
	"github.com/swapcloset/swapcloset/internal/repositories/profiles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Categories(db dbx.DBTX) categories.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Listings(db dbx.DBTX) listings.Repository
}
