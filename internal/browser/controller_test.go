package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareDownloadDirCreatesEmptyDir(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "downloads")

	abs, err := PrepareDownloadDir(target)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))

	info, err := os.Stat(abs)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(abs)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrepareDownloadDirWipesExistingContents(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "downloads")
	require.NoError(t, os.MkdirAll(target, 0o755))
	stale := filepath.Join(target, "Relatorio-MinhasEconomias-2024-01-01.pdf")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	abs, err := PrepareDownloadDir(target)
	require.NoError(t, err)

	entries, err := os.ReadDir(abs)
	require.NoError(t, err)
	assert.Empty(t, entries, "pre-existing artifacts must be destroyed")
}
