package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathsFrom(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "assets")

	paths := NewPathsFrom(base, PathsConfig{
		DataDir:   "data",
		InputDir:  "data/input",
		OutputDir: "data/output",
		AssetsDir: abs,
		LogsDir:   "logs",
	})

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data", "input"), paths.InputDir)
	assert.Equal(t, filepath.Join(base, "data", "output"), paths.OutputDir)
	assert.Equal(t, abs, paths.AssetsDir, "absolute paths are kept")
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
}

func TestPathHelperMethods(t *testing.T) {
	paths := NewPathsFrom("/srv/bike", Default().Paths)

	assert.Equal(t, filepath.Join("/srv/bike", "data", "output", "report.pdf"), paths.GetOutputPath("report.pdf"))
	assert.Equal(t, filepath.Join("/srv/bike", "assets", "logo.jpg"), paths.GetAssetPath("logo.jpg"))
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := NewPathsFrom(base, Default().Paths)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.InputDir, paths.OutputDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
	assert.False(t, FileExists(paths.AssetsDir), "assets directory is never created")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}
