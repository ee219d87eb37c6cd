package fixtures

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// postgresStore accesses a PostgreSQL datastore. The SQL text is shared
// with the SQLite backend; only the placeholder syntax differs.
type postgresStore struct {
	base
}

func (s *postgresStore) Seed(ctx context.Context, movements []Movement) error {
	return s.withConn(ctx, "postgres", func(db *sql.DB) error {
		return s.seed(ctx, db, Rebind, movements)
	})
}

func (s *postgresStore) Sweep(ctx context.Context) (int64, error) {
	s.sweepDelay(ctx)
	var total int64
	err := s.withConn(ctx, "postgres", func(db *sql.DB) error {
		var err error
		total, err = s.sweep(ctx, db)
		return err
	})
	return total, err
}

func (s *postgresStore) DeleteMovements(ctx context.Context, ids []int64) (int64, error) {
	var total int64
	err := s.withConn(ctx, "postgres", func(db *sql.DB) error {
		var err error
		total, err = s.deleteByID(ctx, db, Rebind, ids)
		return err
	})
	return total, err
}
