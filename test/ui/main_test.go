// Package ui drives the full acceptance suite through a real browser. The
// tests require a running application instance (APP_URL or probatio.toml)
// and a reachable copy of its database; when the application is not
// reachable every test skips instead of failing.
package ui

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/ternarybob/probatio/internal/common"
)

var (
	testConfig   *common.Config
	connectivity error
)

// TestMain loads configuration once and probes the application before any
// browser work starts. An unreachable application is reported up front and
// turns every test into a skip.
func TestMain(m *testing.M) {
	cfg, err := common.LoadConfig(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	testConfig = cfg

	if connectivity = verifyAppConnectivity(cfg); connectivity != nil {
		fmt.Fprintf(os.Stderr, "\n⚠ Application not reachable, UI tests will skip\n   %v\n\n", connectivity)
	} else {
		fmt.Fprintf(os.Stderr, "✓ Application reachable at %s\n", cfg.App.BaseURL)
	}

	os.Exit(m.Run())
}

func configPath() string {
	if p := os.Getenv("PROBATIO_CONFIG"); p != "" {
		return p
	}
	for _, candidate := range []string{"probatio.toml", "../../probatio.toml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// verifyAppConnectivity checks the application answers plain HTTP before a
// browser is launched against it.
func verifyAppConnectivity(cfg *common.Config) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(cfg.App.BaseURL)
	if err != nil {
		return fmt.Errorf("application not accessible at %s: %w", cfg.App.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("application returned status %d", resp.StatusCode)
	}
	return nil
}
