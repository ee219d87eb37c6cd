package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/verify"
)

const homeTitle = "Minhas Economias - Saldos"

// AccountBalances creates an income movement on a run-unique account and
// checks the home page grows a balance card showing that exact amount. A
// fresh account name per run means the expected balance is the seeded
// amount, not a sum over residue.
func AccountBalances(c *Context) error {
	account := fixtures.AccountBalancePfx + time.Now().Format("150405")
	description := uniqueDescription("Receita para Saldo")
	today := time.Now().Format("2006-01-02")

	if err := c.Navigate(transactionsPath, "#new_descricao"); err != nil {
		return err
	}
	c.Log.Info().Str("account", account).Msg("Creating income movement for balance check")
	if err := fillMovementForm(c, today, description, "1250,00", fixtures.CategoryCRUD, account); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#submit-movement-button"); err != nil {
		return err
	}
	if _, err := c.WaitRowContaining(description); err != nil {
		return err
	}

	if err := c.Navigate("/", "body"); err != nil {
		return err
	}
	if err := c.RequireTitle(homeTitle); err != nil {
		return err
	}

	// Find the card for the new account and pull the balance text next to
	// its name.
	balanceText, err := await.Value(c.Ctx, fmt.Sprintf("balance card for %q", account), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (string, bool, error) {
			var text string
			err := c.Eval(fmt.Sprintf(`
				(() => {
					const cells = document.querySelectorAll('div, li, tr');
					for (const el of cells) {
						if (el.children.length === 0) continue;
						const name = el.querySelector('p, span, h3, td');
						if (!name || !name.textContent.includes(%q)) continue;
						const text = el.textContent.replace(name.textContent, '');
						const m = text.match(/-?[\d.,]+/);
						if (m) return m[0];
					}
					return '';
				})()
			`, account), &text)
			if err != nil || text == "" {
				return "", false, err
			}
			return text, true, nil
		})
	if err != nil {
		return err
	}

	if err := verify.NumericEqual("account balance card", "1250,00", balanceText); err != nil {
		return err
	}
	c.Log.Info().Str("balance", balanceText).Msg("Balance card shows the seeded amount")
	return nil
}
