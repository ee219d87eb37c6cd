package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

var (
	resultsDir     string
	resultsDirOnce sync.Once
	resultsDirErr  error
)

// runResultsDir returns the per-run results directory, creating it on first
// use so every screenshot from one run lands together. TEST_RESULTS_DIR
// overrides the default location.
func runResultsDir() (string, error) {
	resultsDirOnce.Do(func() {
		if envDir := os.Getenv("TEST_RESULTS_DIR"); envDir != "" {
			resultsDir = envDir
		} else {
			resultsDir = filepath.Join("test_results", time.Now().Format("run-2006-01-02-15-04-05"))
		}
		resultsDirErr = os.MkdirAll(resultsDir, 0o755)
	})
	return resultsDir, resultsDirErr
}

// CaptureFailure screenshots the current page into the run's results
// directory and returns the file path. Called when a scenario fails so the
// page state at the moment of failure is preserved.
func CaptureFailure(ctx context.Context, name string) (string, error) {
	dir, err := runResultsDir()
	if err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", name, time.Now().Format("15-04-05")))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}
	return path, nil
}
