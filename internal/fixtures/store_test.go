package fixtures

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/probatio/internal/common"
)

func TestRebindConvertsPlaceholders(t *testing.T) {
	in := "INSERT INTO movimentacoes (user_id, descricao, valor) VALUES (?, ?, ?)"
	out := Rebind(in)
	assert.Equal(t, "INSERT INTO movimentacoes (user_id, descricao, valor) VALUES ($1, $2, $3)", out)
}

func TestRebindLeavesPlainQueriesAlone(t *testing.T) {
	in := "DELETE FROM movimentacoes WHERE conta LIKE 'Conta Saldo %'"
	assert.Equal(t, in, Rebind(in))
}

func TestOpenSelectsBackend(t *testing.T) {
	log := arbor.NewLogger()

	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	store, err := Open(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &sqliteStore{}, store)

	cfg.Database.Driver = "postgres"
	store, err = Open(cfg, log)
	require.NoError(t, err)
	assert.IsType(t, &postgresStore{}, store)

	cfg.Database.Driver = "mysql"
	_, err = Open(cfg, log)
	require.Error(t, err)
}

func TestLoadSeedSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `movements:
  - date: "2025-08-01"
    description: "Receita para Saldo"
    amount: 1250.00
    category: "Testes CRUD"
    account: "Conta Teste CRUD"
    reconciled: true
  - date: "2025-08-02"
    description: "Despesa teste"
    amount: -99.99
    category: "Testes CRUD"
    account: "Conta Teste Grafico"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadSeedSet(path)
	require.NoError(t, err)
	require.Len(t, set.Movements, 2)
	assert.Equal(t, "Receita para Saldo", set.Movements[0].Description)
	assert.Equal(t, 1250.00, set.Movements[0].Amount)
	assert.True(t, set.Movements[0].Reconciled)
	assert.Equal(t, -99.99, set.Movements[1].Amount)
}

func TestLoadSeedSetMissingFile(t *testing.T) {
	_, err := LoadSeedSet(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

// newTestDB creates a file-backed SQLite database with the application's
// schema and one test user, matching what a deployed instance provides.
func newTestDB(t *testing.T, email string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extratos.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, is_admin BOOLEAN DEFAULT FALSE, dark_mode_enabled BOOLEAN DEFAULT 0)`,
		`CREATE TABLE movimentacoes (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL, data_ocorrencia TEXT NOT NULL, descricao TEXT, valor REAL, categoria TEXT, conta TEXT, consolidado BOOLEAN DEFAULT FALSE)`,
		`CREATE TABLE investimentos_nacionais (user_id INTEGER NOT NULL, ticker TEXT NOT NULL, tipo TEXT, quantidade INTEGER NOT NULL)`,
		`CREATE TABLE investimentos_internacionais (user_id INTEGER NOT NULL, ticker TEXT NOT NULL, descricao TEXT, quantidade REAL NOT NULL, moeda TEXT)`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO users (email, password_hash) VALUES (?, 'x')`, email)
	require.NoError(t, err)
	return path
}

func TestSeedAndSweepRoundTrip(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Name = newTestDB(t, cfg.App.Email)

	store, err := Open(cfg, arbor.NewLogger())
	require.NoError(t, err)

	ctx := context.Background()
	err = store.Seed(ctx, []Movement{
		{Date: "2025-08-01", Description: "Pagamento Teste", Amount: -150.77, Category: CategoryCRUD, Account: AccountCRUD},
		{Date: "2025-08-02", Description: "Receita para Saldo", Amount: 1250.00, Category: "", Account: AccountBalancePfx + "1700000000"},
	})
	require.NoError(t, err)

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Sweep convergence: a second pass against the clean state succeeds
	// with zero rows affected.
	removed, err = store.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweepDeadlineCutsGraceDelayShort(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Name = newTestDB(t, cfg.App.Email)

	store, err := Open(cfg, arbor.NewLogger())
	require.NoError(t, err)

	// The grace delay runs before the sweep connects and honors the
	// context, so an expired deadline aborts well inside the 2s window.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = store.Sweep(ctx)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, sweepGraceDelay)
}

func TestDeleteMovementsByID(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Name = newTestDB(t, cfg.App.Email)

	store, err := Open(cfg, arbor.NewLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Seed(ctx, []Movement{
		{Date: "2025-08-01", Description: "Transfer leg A", Amount: -80.00, Category: CategoryTransfer, Account: AccountTransferOut},
		{Date: "2025-08-01", Description: "Transfer leg B", Amount: 80.00, Category: CategoryTransfer, Account: AccountTransferIn},
	}))

	db, err := sql.Open("sqlite3", cfg.Database.Name)
	require.NoError(t, err)
	rows, err := db.Query(`SELECT id FROM movimentacoes`)
	require.NoError(t, err)
	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	db.Close()
	require.Len(t, ids, 2)

	removed, err := store.DeleteMovements(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Deleting already-removed ids is not an error.
	removed, err = store.DeleteMovements(ctx, ids)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSeedFailsWithoutTestUser(t *testing.T) {
	cfg := common.DefaultConfig()
	cfg.Database.Driver = "sqlite3"
	cfg.Database.Name = newTestDB(t, "someone-else@example.com")

	store, err := Open(cfg, arbor.NewLogger())
	require.NoError(t, err)

	err = store.Seed(context.Background(), []Movement{{Date: "2025-08-01", Description: "x", Account: AccountCRUD}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
