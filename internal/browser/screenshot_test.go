package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Only one test may touch runResultsDir: the directory is resolved once per
// process.
func TestRunResultsDirCreatesConfiguredDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	t.Setenv("TEST_RESULTS_DIR", dir)

	got, err := runResultsDir()
	require.NoError(t, err)
	require.Equal(t, dir, got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
