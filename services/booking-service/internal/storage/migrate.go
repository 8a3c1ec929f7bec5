package storage

import (
	"context"
	"embed"
	"io/fs"

	"github.com/md-rashed-zaman/salonbook/libs/db"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date and returns the files applied on this run.
func Migrate(ctx context.Context, pool *db.Pool) ([]string, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}
	return db.Migrate(ctx, pool, sub)
}
