package fixtures

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore accesses a file-backed SQLite datastore. Placeholders are the
// native '?' form; queries pass through unchanged.
type sqliteStore struct {
	base
}

func passthrough(q string) string { return q }

func (s *sqliteStore) Seed(ctx context.Context, movements []Movement) error {
	return s.withConn(ctx, "sqlite3", func(db *sql.DB) error {
		return s.seed(ctx, db, passthrough, movements)
	})
}

func (s *sqliteStore) Sweep(ctx context.Context) (int64, error) {
	s.sweepDelay(ctx)
	var total int64
	err := s.withConn(ctx, "sqlite3", func(db *sql.DB) error {
		var err error
		total, err = s.sweep(ctx, db)
		return err
	})
	return total, err
}

func (s *sqliteStore) DeleteMovements(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	err := s.withConn(ctx, "sqlite3", func(db *sql.DB) error {
		var err error
		total, err = s.deleteByID(ctx, db, passthrough, ids)
		return err
	})
	return total, err
}
