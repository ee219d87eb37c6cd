// Package fixtures seeds and deletes application-owned records directly in
// the datastore. Records are tagged by naming convention so teardown can
// bulk-delete them regardless of how a scenario ended.
package fixtures

// Fixture tags. Every record the suite creates, through the UI or directly,
// carries one of these account/category names (or the TST ticker prefix) so
// the sweep can find it.
const (
	AccountCRUD        = "Conta Teste CRUD"
	AccountChart       = "Conta Teste Grafico"
	AccountValidation  = "Conta Validação"
	AccountBalancePfx  = "Conta Saldo " // suffixed with a run timestamp
	AccountTransferOut = "Conta Origem Teste"
	AccountTransferIn  = "Conta Destino Teste"
	CategoryCRUD       = "Testes CRUD"
	CategoryTransfer   = "Transferência"
	TickerPrefix       = "TST"
)

// Movement is one ledger entry in the application's movimentacoes table.
// Date is YYYY-MM-DD; Amount is signed (negative = expense).
type Movement struct {
	Date        string  `yaml:"date"`
	Description string  `yaml:"description"`
	Amount      float64 `yaml:"amount"`
	Category    string  `yaml:"category"`
	Account     string  `yaml:"account"`
	Reconciled  bool    `yaml:"reconciled"`
}

// SeedSet is a declarative group of fixture rows, loadable from YAML.
type SeedSet struct {
	Movements []Movement `yaml:"movements"`
}
