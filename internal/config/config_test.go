package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.Source.APIURL)
	assert.Equal(t, 15, cfg.Source.TimeoutSeconds)
	assert.Equal(t, 2.0, cfg.Refresh.IntervalHours)
	assert.Equal(t, 5, cfg.Refresh.FastAttempts)
	assert.Equal(t, 1, cfg.Refresh.FastIntervalMinutes)
	assert.Equal(t, 20, cfg.Refresh.ExtendedAttempts)
	assert.Equal(t, 10, cfg.Refresh.ExtendedIntervalMinutes)
	assert.Equal(t, ":8480", cfg.Server.ListenAddr)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 15*time.Second, cfg.Timeout())
	assert.Equal(t, 2*time.Hour, cfg.RefreshInterval())
	assert.Equal(t, time.Minute, cfg.FastInterval())
	assert.Equal(t, 10*time.Minute, cfg.ExtendedInterval())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  api_url: "https://example.test/amb-data"
  timeout_seconds: 5
refresh:
  interval_hours: 0.5
  fast_attempts: 3
database:
  sqlite_path: "/tmp/tariff.db"
server:
  listen_addr: ":9999"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test/amb-data", cfg.Source.APIURL)
	assert.Equal(t, 5, cfg.Source.TimeoutSeconds)
	assert.Equal(t, 0.5, cfg.Refresh.IntervalHours)
	assert.Equal(t, 3, cfg.Refresh.FastAttempts)
	assert.Equal(t, 20, cfg.Refresh.ExtendedAttempts, "unset fields still get defaults")
	assert.Equal(t, "/tmp/tariff.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AMB_API_URL", "https://override.test/data")
	t.Setenv("REFRESH_INTERVAL_HOURS", "4")
	t.Setenv("LISTEN_ADDR", ":7000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://override.test/data", cfg.Source.APIURL)
	assert.Equal(t, 4.0, cfg.Refresh.IntervalHours)
	assert.Equal(t, ":7000", cfg.Server.ListenAddr)
}

func TestValidate_IntervalRange(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Refresh.IntervalHours = 0.4
	assert.Error(t, cfg.Validate())

	cfg.Refresh.IntervalHours = 25
	assert.Error(t, cfg.Validate())

	cfg.Refresh.IntervalHours = 24
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RetrySettings(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Refresh.FastAttempts = -1
	assert.Error(t, cfg.Validate())

	cfg.Refresh.FastAttempts = 5
	cfg.Refresh.ExtendedIntervalMinutes = -10
	assert.Error(t, cfg.Validate())
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: [not: a: map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
