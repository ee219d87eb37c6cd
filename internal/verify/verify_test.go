package verify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocaleNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1250.00", 1250.00},
		{"1250,00", 1250.00},
		{"1.250,00", 1250.00},
		{"-123,45", -123.45},
		{"-99.99", -99.99},
		{" 80,00 ", 80.00},
	}
	for _, tc := range cases {
		got, err := ParseLocaleNumber(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 0.001, tc.in)
	}

	_, err := ParseLocaleNumber("abc-123,45xyz")
	require.Error(t, err)
}

func TestNumericEqualAcceptsEitherSeparator(t *testing.T) {
	assert.NoError(t, NumericEqual("balance", "1250.00", "1250,00"))
	assert.NoError(t, NumericEqual("balance", "1250,00", "1250.00"))

	err := NumericEqual("balance", "1250.00", "1250.01")
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "1250.00", ae.Expected)
	assert.Equal(t, "1250.01", ae.Actual)
}

func TestBalancedPairHoldsForValidTransfer(t *testing.T) {
	rows := []MovementRow{
		{ID: 10, Description: "Transferência Teste 123", Amount: -80.00, Account: "Conta Origem Teste"},
		{ID: 11, Description: "Transferência Teste 123", Amount: 80.00, Account: "Conta Destino Teste"},
	}
	assert.NoError(t, BalancedPair(rows, "Transferência Teste 123", 80.00, "Conta Origem Teste", "Conta Destino Teste"))
}

func TestBalancedPairRejectsUnbalancedLegs(t *testing.T) {
	rows := []MovementRow{
		{ID: 10, Description: "t", Amount: -80.00, Account: "Conta Origem Teste"},
		{ID: 11, Description: "t", Amount: 79.99, Account: "Conta Destino Teste"},
	}
	err := BalancedPair(rows, "t", 80.00, "Conta Origem Teste", "Conta Destino Teste")
	require.Error(t, err)
}

func TestBalancedPairRejectsSameAccount(t *testing.T) {
	rows := []MovementRow{
		{ID: 10, Description: "t", Amount: -80.00, Account: "Conta Origem Teste"},
		{ID: 11, Description: "t", Amount: 80.00, Account: "Conta Origem Teste"},
	}
	err := BalancedPair(rows, "t", 80.00, "Conta Origem Teste", "Conta Destino Teste")
	require.Error(t, err)
}

func TestBalancedPairRejectsExtraRows(t *testing.T) {
	rows := []MovementRow{
		{Description: "t", Amount: -80.00, Account: "a"},
		{Description: "t", Amount: 80.00, Account: "b"},
		{Description: "t", Amount: 80.00, Account: "c"},
	}
	err := BalancedPair(rows, "t", 80.00, "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2")
}

func TestParseMovementRows(t *testing.T) {
	html := `<table><tbody>
		<tr data-id="42" data-descricao="Pagamento Teste" data-valor="-150.77" data-conta="Conta Teste CRUD" data-categoria="Testes CRUD"><td>…</td></tr>
		<tr data-id="43" data-descricao="Receita" data-valor="1250,00" data-conta="Conta Saldo 1" data-categoria=""><td>…</td></tr>
		<tr><td>no data attributes, ignored</td></tr>
	</tbody></table>`

	rows, err := ParseMovementRows(html)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(42), rows[0].ID)
	assert.InDelta(t, -150.77, rows[0].Amount, 0.001)
	assert.Equal(t, "Conta Teste CRUD", rows[0].Account)
	assert.InDelta(t, 1250.00, rows[1].Amount, 0.001)

	matched := RowsByDescription(rows, "Pagamento Teste")
	require.Len(t, matched, 1)
	assert.Equal(t, int64(42), matched[0].ID)
}

func TestParseMovementRowsMalformedAmount(t *testing.T) {
	html := `<table><tr data-id="1" data-valor="not-a-number"></tr></table>`
	_, err := ParseMovementRows(html)
	require.Error(t, err)
}

func TestCSVContainsAndLacks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CSVExportName)
	content := "Data,Descricao,Valor,Categoria,Conta\n" +
		"2025-08-01,Pagamento Teste CSV,-150.77,Testes CRUD,Conta Teste CRUD\n" +
		"2025-08-02,\"Receita, com vírgula\",1250.00,,Conta Saldo 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assert.NoError(t, CSVContains(path, "Pagamento Teste CSV"))
	assert.NoError(t, CSVContains(path, "Receita, com vírgula"))
	assert.NoError(t, CSVLacks(path, "Despesa Fora do Filtro"))

	require.Error(t, CSVContains(path, "Despesa Fora do Filtro"))
	require.Error(t, CSVLacks(path, "Pagamento Teste CSV"))
}

func TestFileNonEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.Error(t, FileNonEmpty(empty))
	require.Error(t, FileNonEmpty(filepath.Join(dir, "missing.pdf")))

	full := filepath.Join(dir, "full.pdf")
	require.NoError(t, os.WriteFile(full, []byte("%PDF-1.4"), 0o644))
	assert.NoError(t, FileNonEmpty(full))
}

func TestWaitForDownloadResolvesOnceComplete(t *testing.T) {
	dir := t.TempDir()
	name := PDFReportName(time.Now())
	partial := filepath.Join(dir, name+".crdownload")
	require.NoError(t, os.WriteFile(partial, []byte("partial"), 0o644))

	go func() {
		time.Sleep(400 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 data"), 0o644)
		os.Remove(partial)
	}()

	path, err := WaitForDownload(t.Context(), dir, name, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), path)
}

func TestWaitForDownloadTimesOut(t *testing.T) {
	dir := t.TempDir()
	_, err := WaitForDownload(t.Context(), dir, "never.pdf", 400*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never.pdf")
}

func TestPDFReportName(t *testing.T) {
	ts := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "Relatorio-MinhasEconomias-2025-08-31.pdf", PDFReportName(ts))
}
