package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikereport/internal/auth"
	"bikereport/internal/config"
	apperrors "bikereport/internal/errors"
	"bikereport/internal/infrastructure"
	"bikereport/internal/shared/testutil"
)

const tripsJSON = `[
 {"start_station_name":"Torgallmenningen","end_station_name":"Bryggen",
  "start_station_latitude":60.3929,"start_station_longitude":5.3241,
  "end_station_latitude":60.3973,"end_station_longitude":5.3234,"duration":300},
 {"start_station_name":"Bryggen","end_station_name":"Torgallmenningen",
  "start_station_latitude":60.3973,"start_station_longitude":5.3234,
  "end_station_latitude":60.3929,"end_station_longitude":5.3241,"duration":360}
]`

// writeConfig creates a self-contained configuration under a temp dir
func writeConfig(t *testing.T, datasetURL string) (string, string) {
	t.Helper()
	base := t.TempDir()

	testutil.WriteLogo(t, filepath.Join(base, "assets"), "logo.png")

	yaml := fmt.Sprintf(`logging:
  level: debug
  output: file
  file_path: %[1]s/logs/test.log
paths:
  data_dir: %[1]s/data
  input_dir: %[1]s/data/input
  output_dir: %[1]s/data/output
  assets_dir: %[1]s/assets
  logs_dir: %[1]s/logs
dataset:
  url: %[2]s
auth:
  driver: sqlite
  dsn: file:%[1]s/data/users.db
  signing_key: test-signing-key-0123456789
  seed_users:
    user1: pass1
report:
  logo_file: logo.png
  open_viewer: false
`, filepath.ToSlash(base), datasetURL)

	path := filepath.Join(base, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)
	return path, base
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func datasetServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tripsJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName)
	assert.Contains(t, out, config.AppVersion)
}

func TestRunCommandWritesReport(t *testing.T) {
	cfgPath, base := writeConfig(t, datasetServer(t).URL)

	out, err := execute(t, "user1\nnope\nuser1\npass1\n", "run", "--config", cfgPath)
	require.NoError(t, err, out)

	report := filepath.Join(base, "data", "output", config.ReportFileName)
	assert.Contains(t, out, "Invalid username or password")
	assert.Contains(t, out, "Welcome, user1.")
	assert.Contains(t, out, "Report written to "+report)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRunCommandWithInputFile(t *testing.T) {
	srv := datasetServer(t)
	cfgPath, base := writeConfig(t, srv.URL)

	_, err := execute(t, "user1\npass1\n", "run", "--config", cfgPath)
	require.NoError(t, err)
	input := filepath.Join(base, "data", "input", config.DatasetFileName)
	require.FileExists(t, input)

	// The dataset URL is now unreachable; only the local file can work
	srv.Close()
	infrastructure.ResetLoggerForTesting()
	out, err := execute(t, "user1\npass1\n", "run", "--config", cfgPath, "--input", input)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Report written to")
}

func TestRunCommandTooManyAttempts(t *testing.T) {
	cfgPath, _ := writeConfig(t, datasetServer(t).URL)

	out, err := execute(t, "a\nb\nc\nd\ne\nf\n", "run", "--config", cfgPath)
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	assert.Equal(t, 2, strings.Count(out, "Invalid username or password"))
}

func TestRunCommandInputEnds(t *testing.T) {
	cfgPath, _ := writeConfig(t, datasetServer(t).URL)

	_, err := execute(t, "", "run", "--config", cfgPath)
	assert.ErrorContains(t, err, "failed to read input")
}

func TestUsersAddCommand(t *testing.T) {
	cfgPath, _ := writeConfig(t, datasetServer(t).URL)

	out, err := execute(t, "s3cret\n", "users", "add", "user2", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "User user2 added.")

	infrastructure.ResetLoggerForTesting()
	_, err = execute(t, "again\n", "users", "add", "user2", "--config", cfgPath)
	assert.ErrorIs(t, err, auth.ErrUserExists)

	infrastructure.ResetLoggerForTesting()
	out, err = execute(t, "user2\ns3cret\n", "run", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Welcome, user2.")
}

func TestRunCommandBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  max_attempts: 0\n"), 0644))

	_, err := execute(t, "", "run", "--config", path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.Classify(err).Type)
}

func TestUsersAddRequiresName(t *testing.T) {
	_, err := execute(t, "", "users", "add")
	assert.Error(t, err)
}

func TestConsoleLine(t *testing.T) {
	c := newConsole(strings.NewReader("alice\r\nlast"), &bytes.Buffer{})

	s, err := c.line()
	require.NoError(t, err)
	assert.Equal(t, "alice", s)

	s, err = c.line()
	require.NoError(t, err)
	assert.Equal(t, "last", s)

	_, err = c.line()
	assert.Error(t, err)
}
