package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/verify"
)

// AccountTransfer switches the movement form into transfer mode, submits a
// transfer between two accounts and verifies the resulting pair of legs is
// balanced. The legs are removed by record id afterwards so the sweep has
// nothing ambiguous to match on.
func AccountTransfer(c *Context) error {
	if err := c.Navigate(transactionsPath, "#tipo_transferencia"); err != nil {
		return err
	}

	if err := c.Click("#tipo_transferencia"); err != nil {
		return err
	}
	// Transfer mode swaps the account controls in and the category
	// control out; wait for the swap, not for a fixed delay.
	if err := await.Until(c.Ctx, "transfer fields revealed", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var ready bool
			err := c.Eval(`
				(() => {
					const origin = document.querySelector('#new_conta_origem');
					const dest = document.querySelector('#new_conta_destino');
					const cat = document.querySelector('#new_categoria');
					return origin !== null && origin.offsetParent !== null &&
						dest !== null && dest.offsetParent !== null &&
						(cat === null || cat.offsetParent === null);
				})()
			`, &ready)
			return ready, err
		}); err != nil {
		return err
	}

	description := uniqueDescription("Transferencia Teste")
	today := time.Now().Format("2006-01-02")
	c.Log.Info().Str("description", description).Msg("Submitting transfer")

	if err := c.SetField("#new_data_ocorrencia", today); err != nil {
		return err
	}
	if err := c.SetField("#new_descricao", description); err != nil {
		return err
	}
	if err := c.SetField("#new_valor", "80,00"); err != nil {
		return err
	}
	if err := c.SetField("#new_conta_origem", fixtures.AccountTransferOut); err != nil {
		return err
	}
	if err := c.SetField("#new_conta_destino", fixtures.AccountTransferIn); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#submit-movement-button"); err != nil {
		return err
	}

	// Both legs must land; poll until the table shows two rows with the
	// transfer's description.
	var legs []verify.MovementRow
	if err := await.Until(c.Ctx, "both transfer legs in the table", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			html, err := c.TableHTML()
			if err != nil {
				return false, err
			}
			rows, err := verify.ParseMovementRows(html)
			if err != nil {
				return false, err
			}
			legs = verify.RowsByDescription(rows, description)
			return len(legs) >= 2, nil
		}); err != nil {
		return err
	}

	if err := verify.BalancedPair(legs, description, 80.00, fixtures.AccountTransferOut, fixtures.AccountTransferIn); err != nil {
		return err
	}
	for _, leg := range legs {
		if leg.Category != fixtures.CategoryTransfer {
			return &verify.AssertionError{
				What:     "transfer leg category",
				Expected: fixtures.CategoryTransfer,
				Actual:   leg.Category,
			}
		}
	}
	c.Log.Info().
		Int64("debit_id", legs[0].ID).
		Int64("credit_id", legs[1].ID).
		Msg("Transfer legs balanced")

	ids := []int64{legs[0].ID, legs[1].ID}
	removed, err := c.Store.DeleteMovements(context.Background(), ids)
	if err != nil {
		return fmt.Errorf("failed to remove transfer legs: %w", err)
	}
	c.Log.Debug().Int64("removed", removed).Msg("Transfer legs cleaned up by id")
	return nil
}
