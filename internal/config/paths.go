package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for file paths in the application
type Paths struct {
	BaseDir   string
	DataDir   string
	InputDir  string
	OutputDir string
	AssetsDir string
	LogsDir   string
}

// NewPaths resolves the configured directories. Relative entries are joined
// to the current working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPathsFrom(wd, cfg), nil
}

// NewPathsFrom resolves the configured directories against base
func NewPathsFrom(base string, cfg PathsConfig) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:   base,
		DataDir:   resolve(cfg.DataDir),
		InputDir:  resolve(cfg.InputDir),
		OutputDir: resolve(cfg.OutputDir),
		AssetsDir: resolve(cfg.AssetsDir),
		LogsDir:   resolve(cfg.LogsDir),
	}
}

// EnsureDirectories creates the writable directories if they don't exist.
// The assets directory is read-only input and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.InputDir,
		p.OutputDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetOutputPath returns the path for a generated report file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetAssetPath returns the path for a static asset such as the header logo
func (p *Paths) GetAssetPath(filename string) string {
	return filepath.Join(p.AssetsDir, filename)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("input", p.InputDir),
			slog.String("output", p.OutputDir),
			slog.String("assets", p.AssetsDir),
			slog.String("logs", p.LogsDir),
		))
}
