package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/customer-import/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 10000, cfg.Import.BatchSize)
	require.Equal(t, int64(1<<30), cfg.Import.MaxFileSize)
	require.Equal(t, int64(256<<20), cfg.Import.MaxWorkbookSize)
	require.Equal(t, runtime.NumCPU(), cfg.Import.Workers)
	require.Equal(t, 500, cfg.Import.QueueSize)
	require.Equal(t, 5*time.Minute, cfg.Redis.CountTTL)
	require.True(t, *cfg.Import.ReconcileOnStart)
	require.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
  shutdown_timeout: 5s
database:
  url: postgres://file
import:
  batch_size: 500
  reconcile_on_start: false
auth:
  users:
    - username: admin
      password_hash: hash
      role: admin
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("IMPORT_WORKERS", "3")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "postgres://env", cfg.Database.URL)
	require.Equal(t, 500, cfg.Import.BatchSize)
	require.Equal(t, 3, cfg.Import.Workers)
	require.False(t, *cfg.Import.ReconcileOnStart)
	require.Len(t, cfg.Auth.Users, 1)
	require.Equal(t, "admin", cfg.Auth.Users[0].Role)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := config.Load()
	require.Error(t, err)
}
