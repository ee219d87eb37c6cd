// Package browser owns the browser process lifecycle and the per-run
// download directory. A failed launch is fatal to the run: the suite must
// abort rather than continue without a controllable browser.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/probatio/internal/common"
)

// Run is a live browser environment: one browser context and one isolated
// download directory, exclusively owned until Close.
type Run struct {
	Ctx         context.Context
	DownloadDir string

	log     arbor.ILogger
	cancels []context.CancelFunc
}

// Start wipes and recreates the download directory, launches the browser
// and routes downloads into the directory without prompting.
func Start(cfg *common.Config, log arbor.ILogger) (*Run, error) {
	downloadDir, err := PrepareDownloadDir(cfg.Browser.DownloadDir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", downloadDir).Msg("download directory ready")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
	)
	if cfg.Browser.ContainerMode {
		log.Info().Msg("container mode: disabling sandbox and GPU, fixing viewport")
		opts = append(opts,
			chromedp.Flag("headless", true),
			chromedp.NoSandbox,
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(1920, 1080),
		)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	run := &Run{
		Ctx:         browserCtx,
		DownloadDir: downloadDir,
		log:         log,
		cancels:     []context.CancelFunc{cancelBrowser, cancelAlloc},
	}

	// First Run call starts the browser process. Bound it so a missing or
	// broken Chrome install fails the run promptly instead of hanging.
	startCtx, cancelStart := context.WithTimeout(browserCtx, 30*time.Second)
	defer cancelStart()
	err = chromedp.Run(startCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
				WithDownloadPath(downloadDir).
				Do(ctx)
		}),
	)
	if err != nil {
		run.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info().Bool("headless", cfg.Browser.Headless).Msg("browser launched")
	return run, nil
}

// Close shuts the browser down and removes the download directory.
func (r *Run) Close() {
	if err := chromedp.Cancel(r.Ctx); err != nil {
		r.log.Warn().Err(err).Msg("browser cancel returned error")
	}
	for _, cancel := range r.cancels {
		cancel()
	}
	if err := os.RemoveAll(r.DownloadDir); err != nil {
		r.log.Warn().Err(err).Str("dir", r.DownloadDir).Msg("failed to remove download directory")
	} else {
		r.log.Info().Msg("browser closed and download directory removed")
	}
}

// PrepareDownloadDir destroys any pre-existing directory at path and
// recreates it empty, returning the absolute path.
func PrepareDownloadDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve download directory %s: %w", path, err)
	}
	if err := os.RemoveAll(abs); err != nil {
		return "", fmt.Errorf("failed to clear download directory %s: %w", abs, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory %s: %w", abs, err)
	}
	return abs, nil
}
