package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/probatio/internal/common"
)

// sweepGraceDelay is waited before the teardown sweep to avoid racing the
// application's own write flush. This is a documented timing assumption of
// the sweep, not a correctness guarantee; all scenario waits are predicate
// polls.
const sweepGraceDelay = 2 * time.Second

// sweepStatements delete every record matching the suite's fixture tags.
// Zero rows affected is success; the sweep is idempotent.
var sweepStatements = []string{
	"DELETE FROM movimentacoes WHERE conta LIKE 'Conta Saldo %'",
	"DELETE FROM movimentacoes WHERE conta = 'Conta Teste Grafico'",
	"DELETE FROM movimentacoes WHERE conta = 'Conta Teste CRUD'",
	"DELETE FROM movimentacoes WHERE conta = 'Conta Validação'",
	"DELETE FROM movimentacoes WHERE conta IN ('Conta Origem Teste', 'Conta Destino Teste')",
	"DELETE FROM movimentacoes WHERE categoria = 'Testes CRUD'",
	"DELETE FROM investimentos_nacionais WHERE ticker LIKE 'TST%'",
	"DELETE FROM investimentos_internacionais WHERE ticker LIKE 'TST%'",
}

// Store is the fixture-access boundary. Exactly one of the two backend
// implementations is selected at startup; scenario code stays
// backend-agnostic.
type Store interface {
	// Seed inserts movements for the configured test user.
	Seed(ctx context.Context, movements []Movement) error
	// Sweep deletes all fixture-tagged records and returns the count
	// removed. It tolerates an already-clean datastore.
	Sweep(ctx context.Context) (int64, error)
	// DeleteMovements removes specific rows by id (per-scenario cleanup,
	// independent of the bulk sweep).
	DeleteMovements(ctx context.Context, ids []int64) (int64, error)
}

// Open selects the store implementation matching the configured backend.
func Open(cfg *common.Config, log arbor.ILogger) (Store, error) {
	switch cfg.Database.Driver {
	case "sqlite3":
		return &sqliteStore{base: base{dsn: cfg.Database.Name, email: cfg.App.Email, log: log}}, nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Pass, cfg.Database.Name)
		return &postgresStore{base: base{dsn: dsn, email: cfg.App.Email, log: log}}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// LoadSeedSet reads a declarative YAML fixture file.
func LoadSeedSet(path string) (*SeedSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	var set SeedSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &set, nil
}

// Rebind adapts a query written with '?' placeholders to the positional
// '$n' syntax PostgreSQL requires. SQLite queries pass through unchanged.
func Rebind(query string) string {
	parts := strings.Split(query, "?")
	if len(parts) == 1 {
		return query
	}
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i < len(parts)-1 {
			fmt.Fprintf(&b, "$%d", i+1)
		}
	}
	return b.String()
}

// base carries the state shared by both backends. Connections are opened
// and closed per operation; the harness holds no pool.
type base struct {
	dsn   string
	email string
	log   arbor.ILogger
}

func (b *base) withConn(ctx context.Context, driver string, fn func(*sql.DB) error) error {
	db, err := sql.Open(driver, b.dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s datastore: %w", driver, err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s datastore: %w", driver, err)
	}
	return fn(db)
}

func (b *base) userID(ctx context.Context, db *sql.DB, rebind func(string) string) (int64, error) {
	var id int64
	query := rebind("SELECT id FROM users WHERE email = ?")
	if err := db.QueryRowContext(ctx, query, b.email).Scan(&id); err != nil {
		return 0, fmt.Errorf("test user %s not found in datastore: %w", b.email, err)
	}
	return id, nil
}

func (b *base) seed(ctx context.Context, db *sql.DB, rebind func(string) string, movements []Movement) error {
	userID, err := b.userID(ctx, db, rebind)
	if err != nil {
		return err
	}
	insert := rebind("INSERT INTO movimentacoes (user_id, data_ocorrencia, descricao, valor, categoria, conta, consolidado) VALUES (?, ?, ?, ?, ?, ?, ?)")
	for _, m := range movements {
		if _, err := db.ExecContext(ctx, insert,
			userID, m.Date, m.Description, m.Amount, m.Category, m.Account, m.Reconciled); err != nil {
			return fmt.Errorf("failed to seed movement %q: %w", m.Description, err)
		}
	}
	b.log.Info().Int("count", len(movements)).Msg("seeded fixture movements")
	return nil
}

// sweepDelay waits out the grace period before the sweep connects, giving
// the application time to release its handle on the datastore. It runs
// before sql.Open, not after; the context can cut it short.
func (b *base) sweepDelay(ctx context.Context) {
	select {
	case <-time.After(sweepGraceDelay):
	case <-ctx.Done():
	}
}

func (b *base) sweep(ctx context.Context, db *sql.DB) (int64, error) {
	var total int64
	for _, stmt := range sweepStatements {
		res, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return total, fmt.Errorf("sweep statement failed (%s): %w", stmt, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	if total > 0 {
		b.log.Info().Int64("removed", total).Msg("fixture sweep complete")
	} else {
		b.log.Info().Msg("fixture sweep complete, no test records found")
	}
	return total, nil
}

func (b *base) deleteByID(ctx context.Context, db *sql.DB, rebind func(string) string, ids []int64) (int64, error) {
	stmt := rebind("DELETE FROM movimentacoes WHERE id = ?")
	var total int64
	for _, id := range ids {
		res, err := db.ExecContext(ctx, stmt, id)
		if err != nil {
			return total, fmt.Errorf("failed to delete movement %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}
