package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  driver: postgres
  dsn: postgres://u:p@localhost/student_db?sslmode=disable
  max_idle_conns: 2
http_server:
  address: ":9090"
  read_timeout: 3s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@localhost/student_db?sslmode=disable", cfg.Storage.DSN)
	assert.Equal(t, 2, cfg.Storage.MaxIdleConns)
	assert.Equal(t, ":9090", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	// defaults fill what the file leaves out
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  dsn: storage/students.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 0, cfg.Storage.MaxIdleConns)
	assert.Equal(t, "localhost:8082", cfg.HTTPServer.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: sqlite3
  dsn: from-file.db
`)
	t.Setenv("STORAGE_DSN", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Storage.DSN)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  driver: oracle
  dsn: x
`)
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})

	t.Run("dsn required", func(t *testing.T) {
		path := writeConfig(t, `
storage:
  driver: sqlite3
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
