package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikereport/internal/shared/testutil"
)

func newValidator(t *testing.T) (*FileValidator, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewFileValidator(logger), handler
}

func TestValidateOutputDirectory(t *testing.T) {
	v, _ := newValidator(t)

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "reports")
		require.NoError(t, v.ValidateOutputDirectory(dir))
		assert.DirExists(t, dir)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "report.pdf")
		require.NoError(t, os.WriteFile(file, nil, 0644))

		err := v.ValidateOutputDirectory(filepath.Join(file, "sub"))
		assert.ErrorIs(t, err, ErrNotWritable)
	})

	t.Run("read-only directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permissions are not enforced")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0555))
		t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

		assert.ErrorIs(t, v.ValidateOutputDirectory(dir), ErrNotWritable)
	})
}

func TestValidateFile(t *testing.T) {
	v, logs := newValidator(t)
	dir := t.TempDir()

	err := v.ValidateFile(filepath.Join(dir, "missing.xlsx"))
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.True(t, logs.ContainsMessage("File does not exist"))

	assert.ErrorContains(t, v.ValidateFile(dir), "is a directory")

	file := filepath.Join(dir, "data.xlsx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.NoError(t, v.ValidateFile(file))
}

func TestValidateWorkbook(t *testing.T) {
	v, _ := newValidator(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "data.xlsx")
	testutil.WriteWorkbook(t, valid, []string{"duration"}, [][]any{{60}})
	assert.NoError(t, v.ValidateWorkbook(valid))

	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{"wrong extension", "data.csv", []byte("duration\n60\n")},
		{"legacy excel", "data.xls", []byte{0xd0, 0xcf, 0x11, 0xe0}},
		{"lock file", "~$data.xlsx", zipMagic},
		{"no zip signature", "fake.xlsx", []byte("not a workbook")},
		{"too short", "short.xlsx", []byte("PK")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, tt.content, 0644))
			assert.ErrorIs(t, v.ValidateWorkbook(path), ErrNotWorkbook)
		})
	}

	assert.ErrorIs(t, v.ValidateWorkbook(filepath.Join(dir, "missing.xlsx")), ErrFileNotFound)
}
