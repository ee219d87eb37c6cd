// Package scenarios contains one executor per business flow and the
// fail-fast suite runner that drives them. All shared run state (browser
// context, session, fixtures, download directory) travels through an
// injected Context value; nothing is ambient.
package scenarios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/common"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/session"
)

// Context carries everything a scenario executor needs. One Context exists
// per run; the runner re-derives its browser context per scenario to apply
// the scenario timeout ceiling.
type Context struct {
	Ctx         context.Context
	Cfg         *common.Config
	Log         arbor.ILogger
	Dialogs     *await.DialogHandler
	Store       fixtures.Store
	Session     *session.Controller
	DownloadDir string
}

// URL joins a path onto the application base URL.
func (c *Context) URL(path string) string {
	return strings.TrimRight(c.Cfg.App.BaseURL, "/") + path
}

// Navigate opens a page and waits for a selector that proves it rendered.
func (c *Context) Navigate(path, readySelector string) error {
	if err := chromedp.Run(c.Ctx, chromedp.Navigate(c.URL(path))); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", path, err)
	}
	if readySelector == "" {
		return nil
	}
	return await.Until(c.Ctx, fmt.Sprintf("page %s ready (%s)", path, readySelector), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var present bool
			err := chromedp.Run(ctx, chromedp.Evaluate(
				fmt.Sprintf(`document.querySelector(%q) !== null`, readySelector), &present))
			return present, err
		})
}

// RequireTitle asserts the current document title contains want.
func (c *Context) RequireTitle(want string) error {
	var title string
	if err := chromedp.Run(c.Ctx, chromedp.Title(&title)); err != nil {
		return fmt.Errorf("failed to read page title: %w", err)
	}
	if !strings.Contains(title, want) {
		return fmt.Errorf("page title %q does not contain %q", title, want)
	}
	return nil
}

// SetField clears an input and types value into it. Typing (rather than
// assigning .value) keeps client-side constraints like maxlength and input
// sanitizers in play.
func (c *Context) SetField(selector, value string) error {
	err := chromedp.Run(c.Ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

// SetSelect sets a <select> element's value and fires its change event.
// Assigning .value alone dispatches nothing, so listeners that rebuild
// page state on change would never run.
func (c *Context) SetSelect(selector, value string) error {
	err := chromedp.Run(c.Ctx,
		chromedp.SetValue(selector, value, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(
			`document.querySelector(%q).dispatchEvent(new Event('change', { bubbles: true }))`, selector), nil),
	)
	if err != nil {
		return fmt.Errorf("failed to select %s on %s: %w", value, selector, err)
	}
	return nil
}

// Click waits for an element and clicks it.
func (c *Context) Click(selector string) error {
	err := chromedp.Run(c.Ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// FieldValue reads an input's current value.
func (c *Context) FieldValue(selector string) (string, error) {
	var value string
	err := chromedp.Run(c.Ctx, chromedp.Value(selector, &value, chromedp.ByQuery))
	if err != nil {
		return "", fmt.Errorf("failed to read value of %s: %w", selector, err)
	}
	return value, nil
}

// Eval evaluates a JavaScript expression into out.
func (c *Context) Eval(expr string, out interface{}) error {
	return chromedp.Run(c.Ctx, chromedp.Evaluate(expr, out))
}

// WaitRowContaining polls the movement table for a row whose text includes
// fragment and returns its record id.
func (c *Context) WaitRowContaining(fragment string) (string, error) {
	return await.Value(c.Ctx, fmt.Sprintf("table row containing %q", fragment), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (string, bool, error) {
			var id string
			err := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`
				(() => {
					const rows = document.querySelectorAll('tr[data-id]');
					for (const row of rows) {
						if (row.textContent.includes(%q)) return row.dataset.id;
					}
					return '';
				})()
			`, fragment), &id))
			if err != nil || id == "" {
				return "", false, err
			}
			return id, true, nil
		})
}

// WaitRowGone polls until no row with the given record id remains.
func (c *Context) WaitRowGone(id string) error {
	return await.Absence(c.Ctx, fmt.Sprintf("table row with id %s", id), c.Cfg.Timeouts.UI,
		func(ctx context.Context) (bool, error) {
			var present bool
			err := chromedp.Run(ctx, chromedp.Evaluate(
				fmt.Sprintf(`document.querySelector('tr[data-id="%s"]') !== null`, id), &present))
			return present, err
		})
}

// TableHTML captures the outer HTML of the movement table for structural
// verification off the live DOM.
func (c *Context) TableHTML() (string, error) {
	var html string
	err := c.Eval(`(() => { const t = document.querySelector('table'); return t ? t.outerHTML : ''; })()`, &html)
	if err != nil {
		return "", fmt.Errorf("failed to capture table HTML: %w", err)
	}
	return html, nil
}

// StepDelay pauses for the configured visualization delay. Zero by
// default; never a synchronization mechanism.
func (c *Context) StepDelay() {
	if c.Cfg.Browser.StepDelay > 0 {
		time.Sleep(c.Cfg.Browser.StepDelay)
	}
}
