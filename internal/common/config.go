package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the harness configuration. Values are loaded from a TOML
// file (when present) and then overridden by environment variables, which is
// how the target application itself is configured in containers.
type Config struct {
	App      AppConfig      `toml:"app"`
	Browser  BrowserConfig  `toml:"browser"`
	Database DatabaseConfig `toml:"database"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AppConfig describes the application under test.
type AppConfig struct {
	BaseURL  string `toml:"base_url" validate:"required,url"`
	Email    string `toml:"email" validate:"required,email"`
	Password string `toml:"password" validate:"required"`
}

// BrowserConfig controls the browser environment.
type BrowserConfig struct {
	Headless      bool   `toml:"headless"`
	ContainerMode bool   `toml:"container_mode"` // no-sandbox, disable-gpu, fixed viewport
	DownloadDir   string `toml:"download_dir" validate:"required"`
	// StepDelay is a visualization aid for headed debugging. It must never
	// carry correctness: all synchronization goes through the await package.
	// In TOML it is a duration string ("250ms"); see applyDurationFields.
	StepDelay time.Duration `toml:"-"`
}

// DatabaseConfig selects one of the two supported backends and carries its
// connection parameters. The schema is the application's, not the harness's.
type DatabaseConfig struct {
	Driver string `toml:"driver" validate:"required,oneof=sqlite3 postgres"`
	Name   string `toml:"name" validate:"required"` // file path for sqlite3, dbname for postgres
	User   string `toml:"user"`
	Pass   string `toml:"pass"`
	Host   string `toml:"host"`
	Port   string `toml:"port"`
}

// TimeoutConfig bounds every poll in the suite. The TOML form is a duration
// string ("10s", "2m"); go-toml does not decode strings into time.Duration,
// so these fields are filled by applyDurationFields instead of struct tags.
type TimeoutConfig struct {
	UI       time.Duration `toml:"-"` // DOM state changes
	Download time.Duration `toml:"-"` // file-producing operations
	Scenario time.Duration `toml:"-"` // whole-scenario ceiling
}

// LoggingConfig mirrors the arbor writer configuration.
type LoggingConfig struct {
	Level  string   `toml:"level"`
	Output []string `toml:"output"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present. Defaults match the application's local dev setup.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			BaseURL:  "http://localhost:8080",
			Email:    "teste@probatio.local",
			Password: "senha-teste",
		},
		Browser: BrowserConfig{
			Headless:    true,
			DownloadDir: "test_downloads",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			Name:   "extratos.db",
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			Pass:   "postgres",
		},
		Timeouts: TimeoutConfig{
			UI:       10 * time.Second,
			Download: 20 * time.Second,
			Scenario: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig loads configuration in priority order:
// defaults -> TOML file (if path non-empty and readable) -> environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		} else if err := applyDurationFields(cfg, data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// durationFields mirrors the TOML keys whose values are duration strings.
type durationFields struct {
	Browser struct {
		StepDelay string `toml:"step_delay"`
	} `toml:"browser"`
	Timeouts struct {
		UI       string `toml:"ui"`
		Download string `toml:"download"`
		Scenario string `toml:"scenario"`
	} `toml:"timeouts"`
}

// applyDurationFields reads the duration-string keys out of the raw TOML and
// parses them onto cfg. Absent keys keep their defaults.
func applyDurationFields(cfg *Config, data []byte) error {
	var raw durationFields
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range []struct {
		key    string
		value  string
		target *time.Duration
	}{
		{"browser.step_delay", raw.Browser.StepDelay, &cfg.Browser.StepDelay},
		{"timeouts.ui", raw.Timeouts.UI, &cfg.Timeouts.UI},
		{"timeouts.download", raw.Timeouts.Download, &cfg.Timeouts.Download},
		{"timeouts.scenario", raw.Timeouts.Scenario, &cfg.Timeouts.Scenario},
	} {
		if field.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(field.value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", field.key, err)
		}
		*field.target = parsed
	}
	return nil
}

// applyEnvOverrides maps the environment variables the application and its
// container tooling already use onto the harness configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("APP_URL"); v != "" {
		cfg.App.BaseURL = v
	}
	if v := os.Getenv("TEST_USER_EMAIL"); v != "" {
		cfg.App.Email = v
	}
	if v := os.Getenv("TEST_USER_PASSWORD"); v != "" {
		cfg.App.Password = v
	}
	if v := os.Getenv("CONTAINER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.ContainerMode = b
			if b {
				cfg.Browser.Headless = true
			}
		}
	}
	if v := os.Getenv("DB_TYPE"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASS"); v != "" {
		cfg.Database.Pass = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
}

// Validate checks the configuration for structural problems before any
// browser or database resource is opened.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Timeouts.UI <= 0 || c.Timeouts.Download <= 0 {
		return fmt.Errorf("invalid configuration: timeouts must be positive (ui=%v download=%v)", c.Timeouts.UI, c.Timeouts.Download)
	}
	return nil
}
