package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.UI)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Download)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probatio.toml")
	content := `
[app]
base_url = "http://app.local:9090"
email = "qa@app.local"
password = "segredo"

[timeouts]
ui = "5s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://app.local:9090", cfg.App.BaseURL)
	assert.Equal(t, "qa@app.local", cfg.App.Email)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.UI)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Download)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestLoadConfigParsesDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probatio.toml")
	content := `
[browser]
step_delay = "250ms"

[timeouts]
ui = "10s"
download = "20s"
scenario = "2m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Browser.StepDelay)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.UI)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Download)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Scenario)
}

func TestShippedSampleConfigLoads(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "probatio.toml"))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Timeouts.UI)
	assert.Equal(t, 20*time.Second, cfg.Timeouts.Download)
	assert.Equal(t, 2*time.Minute, cfg.Timeouts.Scenario)
}

func TestLoadConfigRejectsBadDurationString(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probatio.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\nui = \"fast\"\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeouts.ui")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().App.BaseURL, cfg.App.BaseURL)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nbase_url="), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	t.Setenv("APP_URL", "http://override.local:8081")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_NAME", "extratos")
	t.Setenv("CONTAINER", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://override.local:8081", cfg.App.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "extratos", cfg.Database.Name)
	assert.True(t, cfg.Browser.ContainerMode)
	// Container mode forces headless regardless of prior value.
	assert.True(t, cfg.Browser.Headless)
}

func TestValidateRejectsBadDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeouts.UI = 0
	assert.Error(t, cfg.Validate())
}
