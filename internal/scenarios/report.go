package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/verify"
)

const (
	reportPath  = "/relatorio"
	reportTitle = "Relatório de Despesas"
)

// ReportPDFExport triggers the report's PDF download and validates the
// artifact lands intact. The browser writes a partial file first; the wait
// helper only resolves once the final name exists with no partial sibling.
func ReportPDFExport(c *Context) error {
	if err := c.Navigate(reportPath, "#save-pdf-button"); err != nil {
		return err
	}
	if err := c.RequireTitle(reportTitle); err != nil {
		return err
	}

	filename := verify.PDFReportName(time.Now())
	c.Log.Info().Str("filename", filename).Msg("Requesting PDF export")
	c.StepDelay()
	if err := c.Click("#save-pdf-button"); err != nil {
		return err
	}

	path, err := verify.WaitForDownload(c.Ctx, c.DownloadDir, filename, c.Cfg.Timeouts.Download)
	if err != nil {
		return err
	}
	if err := verify.ValidPDF(path); err != nil {
		return err
	}
	c.Log.Info().Str("path", path).Msg("PDF artifact downloaded and validated")
	return nil
}

// ReportChartFilter seeds an expense directly in the datastore, filters the
// report to its category, clicks into the pie chart and checks the
// drill-down section lists the seeded movement.
func ReportChartFilter(c *Context) error {
	category := "Categoria Grafico " + time.Now().Format("150405")
	description := uniqueDescription("Despesa Grafico")

	err := c.Store.Seed(context.Background(), []fixtures.Movement{{
		Date:        time.Now().Format("2006-01-02"),
		Description: description,
		Amount:      -99.99,
		Category:    category,
		Account:     fixtures.AccountChart,
		Reconciled:  true,
	}})
	if err != nil {
		return fmt.Errorf("failed to seed chart fixture: %w", err)
	}
	c.Log.Info().Str("category", category).Msg("Seeded expense for chart drill-down")

	if err := c.Navigate(reportPath, "#category-select-display"); err != nil {
		return err
	}

	// Restrict the report to the seeded category via the multi-select
	// dropdown, then apply the filter.
	if err := c.Click("#category-select-display"); err != nil {
		return err
	}
	if err := c.Eval(fmt.Sprintf(`
		(() => {
			const labels = document.querySelectorAll('#category-select-options label');
			const target = Array.from(labels).find(l => l.textContent.includes(%q));
			if (!target) throw new Error('category option not found');
			target.click();
		})()
	`, category), nil); err != nil {
		return fmt.Errorf("failed to pick category option: %w", err)
	}
	if err := c.Eval(`document.body.click()`, nil); err != nil {
		return fmt.Errorf("failed to close category dropdown: %w", err)
	}
	if err := c.Eval(`document.getElementById('reportFilterForm').requestSubmit()`, nil); err != nil {
		return fmt.Errorf("failed to apply report filter: %w", err)
	}

	// The chart redraws after the filtered page loads; wait until its
	// canvas is rendered before clicking into it.
	if err := await.Until(c.Ctx, "expenses pie chart rendered", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var ready bool
			err := c.Eval(`
				(() => {
					const canvas = document.querySelector('#expensesPieChart');
					return canvas !== null && canvas.width > 0 && canvas.offsetParent !== null;
				})()
			`, &ready)
			return ready, err
		}); err != nil {
		return err
	}
	c.StepDelay()
	if err := c.Click("#expensesPieChart"); err != nil {
		return err
	}

	// Drill-down: the transactions section opens and must list the
	// seeded movement.
	if err := await.Until(c.Ctx, "category drill-down section visible", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var visible bool
			err := c.Eval(`
				(() => {
					const section = document.querySelector('#category-transactions-section');
					return section !== null && section.offsetParent !== null;
				})()
			`, &visible)
			return visible, err
		}); err != nil {
		return err
	}
	if err := await.Until(c.Ctx, "seeded movement in drill-down list", c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var listed bool
			err := c.Eval(fmt.Sprintf(
				`document.querySelector('#category-transactions-section').textContent.includes(%q)`,
				description), &listed)
			return listed, err
		}); err != nil {
		return err
	}
	c.Log.Info().Msg("Chart drill-down lists the seeded expense")
	return nil
}
