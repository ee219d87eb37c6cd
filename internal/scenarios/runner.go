package scenarios

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/browser"
	"github.com/ternarybob/probatio/internal/session"
	"github.com/ternarybob/probatio/internal/verify"
)

// Scenario couples a human-readable name with its executor.
type Scenario struct {
	Name string
	Run  func(*Context) error
}

// DefaultSuite returns every scenario in its canonical order. The order is
// deliberate: cheap smoke flows first, download-heavy flows last.
func DefaultSuite() []Scenario {
	return []Scenario{
		{Name: "transaction_crud", Run: TransactionCRUD},
		{Name: "form_validation", Run: FormValidation},
		{Name: "account_balances", Run: AccountBalances},
		{Name: "account_transfer", Run: AccountTransfer},
		{Name: "investment_crud", Run: InvestmentCRUD},
		{Name: "preferences_dark_mode", Run: DarkModeToggle},
		{Name: "profile_and_password", Run: ProfileAndPassword},
		{Name: "report_chart_filter", Run: ReportChartFilter},
		{Name: "report_pdf_export", Run: ReportPDFExport},
		{Name: "csv_export", Run: CSVExport},
	}
}

// Result records the outcome of one scenario.
type Result struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Execute runs scenarios strictly in order and stops at the first failure.
// Each scenario gets a fresh authenticated session and a bounded deadline.
// Fixture residue is swept after the run regardless of outcome.
func Execute(rc *Context, scenarios []Scenario) ([]Result, error) {
	defer func() {
		removed, err := rc.Store.Sweep(context.Background())
		if err != nil {
			rc.Log.Warn().Err(err).Msg("Post-run fixture sweep failed")
			return
		}
		rc.Log.Info().Int64("removed", removed).Msg("Post-run fixture sweep complete")
	}()

	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		rc.Log.Info().Str("scenario", sc.Name).Msg("Starting scenario")
		start := time.Now()
		err := runOne(rc, sc)
		elapsed := time.Since(start)
		results = append(results, Result{Name: sc.Name, Duration: elapsed, Err: err})

		if err != nil {
			if shot, shotErr := browser.CaptureFailure(rc.Ctx, sc.Name); shotErr != nil {
				rc.Log.Warn().Err(shotErr).Msg("Could not capture failure screenshot")
			} else {
				rc.Log.Info().Str("path", shot).Msg("Failure screenshot saved")
			}
			rc.Log.Error().
				Str("scenario", sc.Name).
				Str("kind", classify(err)).
				Str("duration", elapsed.Round(time.Millisecond).String()).
				Err(err).
				Msg("Scenario failed, aborting run")
			return results, fmt.Errorf("scenario %s failed: %w", sc.Name, err)
		}
		rc.Log.Info().
			Str("scenario", sc.Name).
			Str("duration", elapsed.Round(time.Millisecond).String()).
			Msg("Scenario passed")
	}
	return results, nil
}

func runOne(rc *Context, sc Scenario) error {
	ctx, cancel := context.WithTimeout(rc.Ctx, rc.Cfg.Timeouts.Scenario)
	defer cancel()

	scoped := *rc
	scoped.Ctx = ctx

	if err := scoped.Session.Login(ctx, session.Credentials{
		Email:    rc.Cfg.App.Email,
		Password: rc.Cfg.App.Password,
	}); err != nil {
		return err
	}

	// Swallow any dialog left over from a previous page before the
	// scenario starts interacting.
	if leftovers := scoped.Dialogs.Drain(0); len(leftovers) > 0 {
		rc.Log.Debug().Int("count", len(leftovers)).Msg("Discarded stale dialogs before scenario")
	}

	return sc.Run(&scoped)
}

// classify maps an error to its failure taxonomy bucket for log output.
func classify(err error) string {
	var setupErr *session.SetupError
	var assertErr *verify.AssertionError
	switch {
	case errors.As(err, &setupErr):
		return "setup"
	case errors.As(err, &assertErr):
		return "assertion"
	case await.IsTimeout(err):
		return "timeout"
	default:
		return "execution"
	}
}
