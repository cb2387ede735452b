package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 120*time.Second, cfg.Access.QRFreshness)
	require.False(t, cfg.Access.Diagnostics)
	require.True(t, cfg.Maintenance.Enabled)
	require.Equal(t, 365, cfg.Maintenance.RetentionDays)
	require.Equal(t, "@daily", cfg.Maintenance.LogSchedule)
	require.True(t, cfg.Monitoring.MetricsEnabled)
	require.True(t, cfg.Realtime.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9090
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: access
    username: svc
access:
  qr_freshness: 45s
maintenance:
  retention_days: 30
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, 45*time.Second, cfg.Access.QRFreshness)
	require.Equal(t, 30, cfg.Maintenance.RetentionDays)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ACCESS_SERVER_PORT", "7070")
	t.Setenv("ACCESS_ACCESS_QR_FRESHNESS", "90s")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 90*time.Second, cfg.Access.QRFreshness)
}
