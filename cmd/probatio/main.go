package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/probatio/internal/await"
	"github.com/ternarybob/probatio/internal/browser"
	"github.com/ternarybob/probatio/internal/common"
	"github.com/ternarybob/probatio/internal/fixtures"
	"github.com/ternarybob/probatio/internal/scenarios"
	"github.com/ternarybob/probatio/internal/session"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	headed       = flag.Bool("headed", false, "Run with a visible browser window (overrides config)")
	seedFile     = flag.String("seed", "", "YAML seed file applied to the database before the run")
	schedule     = flag.String("schedule", "", "Cron expression; run the suite on a schedule instead of once")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Probatio version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// A local .env is a convenience for developers; absence is normal.
	_ = godotenv.Load()

	path := *configFile
	if *configFileC != "" {
		path = *configFileC
	}
	if path == "" {
		if _, err := os.Stat("probatio.toml"); err == nil {
			path = "probatio.toml"
		}
	}

	config, err := common.LoadConfig(path)
	if err != nil {
		arbor.NewLogger().Fatal().Str("path", path).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	if *headed {
		config.Browser.Headless = false
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Str("config_file", path).
		Str("app_url", config.App.BaseURL).
		Str("db_driver", config.Database.Driver).
		Bool("headless", config.Browser.Headless).
		Msg("Configuration loaded")

	if *schedule == "" {
		os.Exit(runSuite(config, logger))
	}

	// Scheduled mode keeps the process alive and runs the full suite on
	// each tick. A failing run is logged, not fatal.
	c := cron.New()
	if _, err := c.AddFunc(*schedule, func() {
		if code := runSuite(config, logger); code != 0 {
			logger.Error().Int("exit_code", code).Msg("Scheduled run failed")
		}
	}); err != nil {
		logger.Fatal().Str("schedule", *schedule).Err(err).Msg("Invalid cron expression")
		os.Exit(1)
	}
	c.Start()
	logger.Info().Str("schedule", *schedule).Msg("Running on schedule, press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info().Msg("Interrupt received, stopping scheduler")
	<-c.Stop().Done()
}

// runSuite executes the whole scenario suite once against a fresh browser
// and returns the process exit code.
func runSuite(config *common.Config, logger arbor.ILogger) int {
	store, err := fixtures.Open(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open fixture store")
		return 2
	}

	if *seedFile != "" {
		set, err := fixtures.LoadSeedSet(*seedFile)
		if err != nil {
			logger.Error().Str("path", *seedFile).Err(err).Msg("Failed to load seed file")
			return 2
		}
		if err := store.Seed(context.Background(), set.Movements); err != nil {
			logger.Error().Err(err).Msg("Failed to apply seed file")
			return 2
		}
		logger.Info().Int("movements", len(set.Movements)).Msg("Seed file applied")
	}

	run, err := browser.Start(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to start browser")
		return 2
	}
	defer run.Close()

	rc := &scenarios.Context{
		Ctx:         run.Ctx,
		Cfg:         config,
		Log:         logger,
		Dialogs:     await.NewDialogHandler(run.Ctx, logger),
		Store:       store,
		Session:     session.New(config.App.BaseURL, config.Timeouts.UI, logger),
		DownloadDir: run.DownloadDir,
	}

	results, err := scenarios.Execute(rc, scenarios.DefaultSuite())
	passed := 0
	for _, r := range results {
		if r.Err == nil {
			passed++
		}
	}
	logger.Info().
		Int("passed", passed).
		Int("executed", len(results)).
		Msg("Run complete")

	if err != nil {
		return 1
	}
	return 0
}
