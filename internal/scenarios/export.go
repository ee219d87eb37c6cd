package scenarios

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/verify"
)

// setFilterField assigns a filter input's value directly and fires change so
// the page rebuilds the export link. Typing is not needed here; the filter
// inputs carry no client-side sanitizer.
func setFilterField(c *Context, name, value string) error {
	err := c.Eval(fmt.Sprintf(`
		(() => {
			const el = document.querySelector('[name=%q]');
			if (!el) throw new Error('filter field not found');
			el.value = %q;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			el.dispatchEvent(new Event('input', { bubbles: true }));
		})()
	`, name, value), nil)
	if err != nil {
		return fmt.Errorf("failed to set filter %s: %w", name, err)
	}
	return nil
}

// waitExportHref polls the CSV link until its query string satisfies pred.
func waitExportHref(c *Context, desc string, pred func(string) bool) error {
	_, err := await.Value(c.Ctx, desc, c.Cfg.Timeouts.UI,
		func(ctx context.Context) (string, bool, error) {
			var href string
			err := c.Eval(`
				(() => {
					const link = document.querySelector('#csvExportLink');
					return link ? link.getAttribute('href') : '';
				})()
			`, &href)
			if err != nil || href == "" {
				return "", false, err
			}
			return href, pred(href), nil
		})
	return err
}

// downloadCSV follows the export link and waits for the artifact. The
// export always uses the same filename, so any previous copy is removed
// first to keep the browser from suffixing the new one.
func downloadCSV(c *Context) (string, error) {
	stale := filepath.Join(c.DownloadDir, verify.CSVExportName)
	if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to clear previous CSV artifact: %w", err)
	}
	if err := c.Click("#csvExportLink"); err != nil {
		return "", err
	}
	return verify.WaitForDownload(c.Ctx, c.DownloadDir, verify.CSVExportName, c.Cfg.Timeouts.Download)
}

// CSVExport seeds a matching and a non-matching movement, downloads the
// unfiltered CSV (both present), then applies a description filter and
// downloads again (only the match present). The export link's href is the
// synchronization point: it must reflect the filter state before the click.
func CSVExport(c *Context) error {
	match := uniqueDescription("Pagamento Teste CSV")
	other := uniqueDescription("Despesa Fora do Filtro")
	today := time.Now().Format("2006-01-02")

	err := c.Store.Seed(context.Background(), []fixtures.Movement{
		{Date: today, Description: match, Amount: -42.10, Category: fixtures.CategoryCRUD, Account: fixtures.AccountCRUD, Reconciled: true},
		{Date: today, Description: other, Amount: -13.37, Category: fixtures.CategoryCRUD, Account: fixtures.AccountCRUD, Reconciled: true},
	})
	if err != nil {
		return fmt.Errorf("failed to seed CSV fixtures: %w", err)
	}

	if err := c.Navigate(transactionsPath, "#csvExportLink"); err != nil {
		return err
	}

	// Clear the default date window so neither seeded row falls outside
	// the export range.
	if err := setFilterField(c, "start_date", ""); err != nil {
		return err
	}
	if err := setFilterField(c, "end_date", ""); err != nil {
		return err
	}
	if err := waitExportHref(c, "export link without date bounds", func(href string) bool {
		return !strings.Contains(href, "start_date=2") && !strings.Contains(href, "end_date=2")
	}); err != nil {
		return err
	}

	c.Log.Info().Msg("Downloading unfiltered CSV export")
	path, err := downloadCSV(c)
	if err != nil {
		return err
	}
	if err := verify.CSVContains(path, match); err != nil {
		return err
	}
	if err := verify.CSVContains(path, other); err != nil {
		return err
	}

	// Now scope the export to one description and confirm the link
	// carries the filter before downloading again.
	if err := setFilterField(c, "search_descricao", match); err != nil {
		return err
	}
	encoded := url.QueryEscape(match)
	if err := waitExportHref(c, "export link carrying description filter", func(href string) bool {
		return strings.Contains(href, "search_descricao="+encoded) ||
			strings.Contains(href, "search_descricao="+strings.ReplaceAll(encoded, "+", "%20"))
	}); err != nil {
		return err
	}

	c.Log.Info().Str("filter", match).Msg("Downloading filtered CSV export")
	path, err = downloadCSV(c)
	if err != nil {
		return err
	}
	if err := verify.CSVContains(path, match); err != nil {
		return err
	}
	if err := verify.CSVLacks(path, other); err != nil {
		return err
	}
	c.Log.Info().Msg("Filtered export contains only the matching movement")
	return nil
}
