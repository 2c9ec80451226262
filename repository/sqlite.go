package repository

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// OpenSQLite opens a Bun handle over SQLite. With an in-memory DSN the data
// lives only as long as the process.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	// An in-memory database exists per connection; keep exactly one.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewSQLiteUsers opens dsn and returns a migrated UserRepository
func NewSQLiteUsers(ctx context.Context, dsn string) (*UserRepository, *bun.DB, error) {
	db, err := OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	repo := NewUserRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return repo, db, nil
}
