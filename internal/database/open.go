package database

import (
	"context"
	"fmt"
)

// Open picks PostgreSQL when a DSN is configured and SQLite otherwise.
func Open(ctx context.Context, postgresDSN, sqlitePath string) (WeightStore, error) {
	switch {
	case postgresDSN != "":
		return NewPostgres(ctx, postgresDSN)
	case sqlitePath != "":
		return NewSQLite(sqlitePath)
	}
	return nil, fmt.Errorf("no weight store configured: set DATABASE_URL or SQLITE_PATH")
}
