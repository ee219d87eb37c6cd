package scenarios

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/verify"
)

const (
	transactionsPath  = "/transacoes"
	transactionsTitle = "Transações Financeiras"
)

// uniqueDescription builds a description no prior run can collide with.
func uniqueDescription(prefix string) string {
	return fmt.Sprintf("%s %s", prefix, uuid.NewString()[:8])
}

// fillMovementForm populates the inline movement form. The amount is typed,
// not assigned, so the page's own sanitizer runs.
func fillMovementForm(c *Context, date, description, amount, category, account string) error {
	if date != "" {
		if err := c.SetField("#new_data_ocorrencia", date); err != nil {
			return err
		}
	}
	if err := c.SetField("#new_descricao", description); err != nil {
		return err
	}
	if err := c.SetField("#new_valor", amount); err != nil {
		return err
	}
	if err := c.SetField("#new_categoria", category); err != nil {
		return err
	}
	return c.SetField("#new_conta", account)
}

// TransactionCRUD walks one ledger entry through create, edit and delete on
// the transactions page, verifying the table after every step.
func TransactionCRUD(c *Context) error {
	if err := c.Navigate(transactionsPath, "#new_descricao"); err != nil {
		return err
	}
	if err := c.RequireTitle(transactionsTitle); err != nil {
		return err
	}

	description := uniqueDescription("Pagamento Teste")
	today := time.Now().Format("2006-01-02")

	c.Log.Info().Str("description", description).Msg("Creating movement through the form")
	if err := fillMovementForm(c, today, description, "-150,77", fixtures.CategoryCRUD, fixtures.AccountCRUD); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#submit-movement-button"); err != nil {
		return err
	}

	id, err := c.WaitRowContaining(description)
	if err != nil {
		return err
	}
	c.Log.Info().Str("id", id).Msg("Movement row appeared")

	// The row's data attributes are the structural contract; spot-check
	// them rather than trusting visible text alone.
	html, err := c.TableHTML()
	if err != nil {
		return err
	}
	rows, err := verify.ParseMovementRows(html)
	if err != nil {
		return err
	}
	created := verify.RowsByDescription(rows, description)
	if len(created) != 1 {
		return &verify.AssertionError{
			What:     "created movement row",
			Expected: "exactly one row with the new description",
			Actual:   fmt.Sprintf("%d rows", len(created)),
		}
	}
	if err := verify.NumericEqual("created movement amount", "-150,77", strconv.FormatFloat(created[0].Amount, 'f', 2, 64)); err != nil {
		return err
	}
	if created[0].Account != fixtures.AccountCRUD {
		return &verify.AssertionError{What: "created movement account", Expected: fixtures.AccountCRUD, Actual: created[0].Account}
	}

	// Edit: the row's edit button loads the record back into the same form.
	if err := c.Click(fmt.Sprintf(`tr[data-id="%s"] .edit-button`, id)); err != nil {
		return err
	}
	if err := await.Until(c.Ctx, "form populated with record under edit", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			v, err := c.FieldValue("#new_descricao")
			return v == description, err
		}); err != nil {
		return err
	}

	edited := description + " Editado"
	if err := c.SetField("#new_descricao", edited); err != nil {
		return err
	}
	if err := c.SetField("#new_valor", "-99,99"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#submit-movement-button"); err != nil {
		return err
	}
	editedID, err := c.WaitRowContaining(edited)
	if err != nil {
		return err
	}
	c.Log.Info().Str("id", editedID).Msg("Edited movement row appeared")

	// Delete: confirm dialog names the record id, then an optional
	// success alert follows.
	if err := c.Click(fmt.Sprintf(`tr[data-id="%s"] .delete-button`, editedID)); err != nil {
		return err
	}
	msg, err := c.Dialogs.Accept("Tem certeza que deseja excluir a movimentação", c.Cfg.Timeouts.UI)
	if err != nil {
		return err
	}
	if !strings.Contains(msg, editedID) {
		return &verify.AssertionError{
			What:     "delete confirmation dialog",
			Expected: "message naming record " + editedID,
			Actual:   msg,
		}
	}
	for _, extra := range c.Dialogs.Drain(2 * time.Second) {
		c.Log.Debug().Str("message", extra).Msg("Post-delete dialog")
	}

	if err := c.WaitRowGone(editedID); err != nil {
		return err
	}
	c.Log.Info().Msg("Movement deleted and gone from the table")
	return nil
}
