package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
)

const investmentsPath = "/investimentos"

// investmentRowPresent reports whether a row for ticker exists in the given
// table body.
func investmentRowPresent(c *Context, ctx context.Context, tbody, ticker string) (bool, error) {
	var present bool
	err := c.Eval(fmt.Sprintf(`
		(() => {
			const body = document.querySelector(%q);
			if (!body) return false;
			return Array.from(body.querySelectorAll('tr')).some(r => r.textContent.includes(%q));
		})()
	`, tbody, ticker), &present)
	return present, err
}

func waitInvestmentRow(c *Context, tbody, ticker string) error {
	return await.Until(c.Ctx, fmt.Sprintf("%s row for %s", tbody, ticker), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			return investmentRowPresent(c, ctx, tbody, ticker)
		})
}

func waitInvestmentRowGone(c *Context, tbody, ticker string) error {
	return await.Absence(c.Ctx, fmt.Sprintf("%s row for %s", tbody, ticker), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			return investmentRowPresent(c, ctx, tbody, ticker)
		})
}

// waitPricesSettled waits until no table cell still shows the loading
// placeholder that the async price fetch renders.
func waitPricesSettled(c *Context) error {
	return await.Absence(c.Ctx, "price loading placeholders", c.Cfg.Timeouts.Download,
		func(ctx context.Context) (bool, error) {
			var loading bool
			err := c.Eval(`
				(() => {
					const bodies = document.querySelectorAll('#acoes-table-body, #internacional-table-body');
					return Array.from(bodies).some(b => b.textContent.includes('Carregando'));
				})()
			`, &loading)
			return loading, err
		})
}

func deleteInvestment(c *Context, tbody, ticker string) error {
	err := c.Eval(fmt.Sprintf(`
		(() => {
			const body = document.querySelector(%q);
			const row = Array.from(body.querySelectorAll('tr')).find(r => r.textContent.includes(%q));
			if (!row) throw new Error('row not found');
			row.querySelector('.delete-button').click();
		})()
	`, tbody, ticker), nil)
	if err != nil {
		return fmt.Errorf("failed to trigger delete for %s: %w", ticker, err)
	}
	if _, err := c.Dialogs.Accept("Tem certeza que deseja excluir o ativo", c.Cfg.Timeouts.UI); err != nil {
		return err
	}
	for _, extra := range c.Dialogs.Drain(2 * time.Second) {
		c.Log.Debug().Str("message", extra).Msg("Post-delete dialog")
	}
	return waitInvestmentRowGone(c, tbody, ticker)
}

// InvestmentCRUD adds a national and an international asset, edits the
// national position's quantity, waits for the async price columns to
// settle and deletes both assets again.
func InvestmentCRUD(c *Context) error {
	if err := c.Navigate(investmentsPath, "#add-nacional-ticker"); err != nil {
		return err
	}

	suffix := time.Now().Format("0405")
	national := fixtures.TickerPrefix + suffix + "3"
	international := fixtures.TickerPrefix + suffix + "I"

	c.Log.Info().Str("ticker", national).Msg("Adding national asset")
	if err := c.SetField("#add-nacional-ticker", national); err != nil {
		return err
	}
	if err := c.SetSelect("#add-nacional-tipo", "acao"); err != nil {
		return err
	}
	if err := c.SetField("#add-nacional-quantidade", "10"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Eval(`document.getElementById('add-nacional-form').requestSubmit()`, nil); err != nil {
		return fmt.Errorf("failed to submit national asset: %w", err)
	}
	for _, msg := range c.Dialogs.Drain(2 * time.Second) {
		c.Log.Debug().Str("message", msg).Msg("Add-asset dialog")
	}
	if err := waitInvestmentRow(c, "#acoes-table-body", national); err != nil {
		return err
	}
	if err := waitPricesSettled(c); err != nil {
		return err
	}

	// Edit the quantity through the dedicated edit panel.
	c.Log.Info().Str("ticker", national).Msg("Editing national asset quantity")
	if err := c.Eval(fmt.Sprintf(`
		(() => {
			const body = document.querySelector('#acoes-table-body');
			const row = Array.from(body.querySelectorAll('tr')).find(r => r.textContent.includes(%q));
			row.querySelector('.edit-button').click();
		})()
	`, national), nil); err != nil {
		return fmt.Errorf("failed to open edit panel: %w", err)
	}
	if err := c.SetField("#edit-quantity", "15"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Eval(`document.getElementById('edit-investment-form').requestSubmit()`, nil); err != nil {
		return fmt.Errorf("failed to submit quantity edit: %w", err)
	}
	for _, msg := range c.Dialogs.Drain(2 * time.Second) {
		c.Log.Debug().Str("message", msg).Msg("Edit-asset dialog")
	}
	if err := await.Until(c.Ctx, "edited quantity in the table", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var updated bool
			err := c.Eval(fmt.Sprintf(`
				(() => {
					const body = document.querySelector('#acoes-table-body');
					const row = Array.from(body.querySelectorAll('tr')).find(r => r.textContent.includes(%q));
					if (!row) return false;
					const btn = row.querySelector('.edit-button');
					return btn && btn.dataset.quantity === '15';
				})()
			`, national), &updated)
			return updated, err
		}); err != nil {
		return err
	}

	c.Log.Info().Str("ticker", international).Msg("Adding international asset")
	if err := c.SetField("#add-internacional-ticker", international); err != nil {
		return err
	}
	if err := c.SetField("#add-internacional-descricao", "Ativo Internacional Teste"); err != nil {
		return err
	}
	if err := c.SetField("#add-internacional-quantidade", "2,5"); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Eval(`document.getElementById('add-internacional-form').requestSubmit()`, nil); err != nil {
		return fmt.Errorf("failed to submit international asset: %w", err)
	}
	for _, msg := range c.Dialogs.Drain(2 * time.Second) {
		c.Log.Debug().Str("message", msg).Msg("Add-asset dialog")
	}
	if err := waitInvestmentRow(c, "#internacional-table-body", international); err != nil {
		return err
	}

	c.Log.Info().Msg("Deleting both assets")
	if err := deleteInvestment(c, "#acoes-table-body", national); err != nil {
		return err
	}
	return deleteInvestment(c, "#internacional-table-body", international)
}
