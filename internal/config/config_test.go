package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultInputDir, cfg.Paths.InputDir)
	assert.Equal(t, DefaultDatasetURL, cfg.Dataset.URL)
	assert.Equal(t, 10000, cfg.Dataset.RowLimit)
	assert.Equal(t, "sqlite", cfg.Auth.Driver)
	assert.Equal(t, 3, cfg.Auth.MaxAttempts)
	assert.Equal(t, ReportFileName, cfg.Report.FileName)
	assert.True(t, cfg.Report.OpenViewer)
	assert.False(t, cfg.Report.ExportCSV)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "file overrides defaults",
			file: `
logging:
  level: debug
dataset:
  row_limit: 500
report:
  export_csv: true
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 500, cfg.Dataset.RowLimit)
				assert.True(t, cfg.Report.ExportCSV)
				// untouched sections keep defaults
				assert.Equal(t, DefaultDatasetURL, cfg.Dataset.URL)
			},
		},
		{
			name: "env wins over file",
			file: `
logging:
  level: debug
`,
			env: map[string]string{
				"BIKE_LOGGING_LEVEL":     "warn",
				"BIKE_AUTH_TOKEN_TTL":    "30m",
				"BIKE_AUTH_SEED_USERS":   "user1:pass1,user2:pass2",
				"BIKE_REPORT_OPEN_VIEWER": "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
				assert.Equal(t, map[string]string{"user1": "pass1", "user2": "pass2"}, cfg.Auth.SeedUsers)
				assert.False(t, cfg.Report.OpenViewer)
			},
		},
		{
			name:    "invalid level rejected",
			env:     map[string]string{"BIKE_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "unknown driver rejected",
			file:    "auth:\n  driver: mysql\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "logging: [unterminated",
			wantErr: true,
		},
		{
			name:    "malformed duration in env",
			env:     map[string]string{"BIKE_DATASET_HTTP_TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(*Config) {}, false},
		{"zero row limit", func(c *Config) { c.Dataset.RowLimit = 0 }, true},
		{"bad url", func(c *Config) { c.Dataset.URL = "not a url" }, true},
		{"short signing key", func(c *Config) { c.Auth.SigningKey = "short" }, true},
		{"zero attempts", func(c *Config) { c.Auth.MaxAttempts = 0 }, true},
		{"missing logo", func(c *Config) { c.Report.LogoFile = "" }, true},
		{"postgres driver", func(c *Config) { c.Auth.Driver = "postgres" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
