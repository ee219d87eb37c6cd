package ui

import (
	"context"
	"testing"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/browser"
	"github.com/ternarybob/probatio/internal/common"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/scenarios"
	"github.com/ternarybob/probatio/internal/session"
)

// setupUITest builds a fully wired scenario context against a fresh browser.
// Cleanup (logout, fixture sweep, browser shutdown) is registered on t so it
// runs however the test ends.
func setupUITest(t *testing.T) *scenarios.Context {
	t.Helper()

	if connectivity != nil {
		t.Skipf("application not reachable: %v", connectivity)
	}

	logger := common.InitLogger(testConfig)

	store, err := fixtures.Open(testConfig, logger)
	if err != nil {
		t.Fatalf("failed to open fixture store: %v", err)
	}

	run, err := browser.Start(testConfig, logger)
	if err != nil {
		t.Fatalf("failed to start browser: %v", err)
	}
	t.Cleanup(run.Close)

	rc := &scenarios.Context{
		Ctx:         run.Ctx,
		Cfg:         testConfig,
		Log:         logger,
		Dialogs:     await.NewDialogHandler(run.Ctx, logger),
		Store:       store,
		Session:     session.New(testConfig.App.BaseURL, testConfig.Timeouts.UI, logger),
		DownloadDir: run.DownloadDir,
	}

	t.Cleanup(func() {
		if removed, err := store.Sweep(context.Background()); err != nil {
			t.Logf("fixture sweep failed: %v", err)
		} else if removed > 0 {
			t.Logf("fixture sweep removed %d rows", removed)
		}
	})

	return rc
}

// runScenario logs in and executes one scenario executor under the
// configured scenario deadline, failing the test on any error.
func runScenario(t *testing.T, rc *scenarios.Context, run func(*scenarios.Context) error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(rc.Ctx, testConfig.Timeouts.Scenario)
	defer cancel()

	scoped := *rc
	scoped.Ctx = ctx

	err := scoped.Session.Login(ctx, session.Credentials{
		Email:    testConfig.App.Email,
		Password: testConfig.App.Password,
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := run(&scoped); err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
}
