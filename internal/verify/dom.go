package verify

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseMovementRows extracts ledger rows from captured table HTML. Rows
// carry the application's data attributes (data-id, data-descricao,
// data-valor, data-conta, data-categoria).
func ParseMovementRows(tableHTML string) ([]MovementRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse table HTML: %w", err)
	}

	var rows []MovementRow
	var parseErr error
	doc.Find("tr[data-id]").Each(func(_ int, sel *goquery.Selection) {
		if parseErr != nil {
			return
		}
		row := MovementRow{
			Description: sel.AttrOr("data-descricao", ""),
			Account:     sel.AttrOr("data-conta", ""),
			Category:    sel.AttrOr("data-categoria", ""),
		}
		if _, err := fmt.Sscan(sel.AttrOr("data-id", ""), &row.ID); err != nil {
			parseErr = fmt.Errorf("row with malformed data-id: %w", err)
			return
		}
		amount, err := ParseLocaleNumber(sel.AttrOr("data-valor", ""))
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", row.ID, err)
			return
		}
		row.Amount = amount
		rows = append(rows, row)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return rows, nil
}

// RowsByDescription filters parsed rows to those matching description.
func RowsByDescription(rows []MovementRow, description string) []MovementRow {
	var out []MovementRow
	for _, r := range rows {
		if r.Description == description {
			out = append(out, r)
		}
	}
	return out
}
