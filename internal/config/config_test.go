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

func TestLoad_DefaultsWithEnv(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Delivery.Concurrency)
	assert.Equal(t, 72*time.Hour, cfg.Sweeps.MissedLeadWindow)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: postgres
database:
  dsn: postgres://file/hirelocal
  migrate: true
auth:
  jwtSecret: from-file
delivery:
  concurrency: 3
sweeps:
  missedLeadWindow: 48h
rateLimit:
  leadsPerMinute: 2
  burst: 1
log:
  format: text
`)
	t.Setenv(configPathEnv, path)
	t.Setenv("DATABASE_URL", "postgres://env/hirelocal")
	t.Setenv("DELIVERY_CONCURRENCY", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/hirelocal", cfg.Database.DSN)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 12, cfg.Delivery.Concurrency)
	assert.Equal(t, 48*time.Hour, cfg.Sweeps.MissedLeadWindow)
	assert.Equal(t, 5*time.Minute, cfg.Sweeps.MissedLeadInterval, "unset keys keep their defaults")
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad integer", func(t *testing.T) {
		t.Setenv(configPathEnv, "")
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("MAIL_PORT", "smtp")
		_, err := Load()
		assert.ErrorContains(t, err, "MAIL_PORT")
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "database.dsn")
	assert.ErrorContains(t, err, "jwtSecret")

	cfg.Storage.Driver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "storage.driver")

	cfg = Default()
	cfg.Storage.Driver = DriverMemory
	cfg.Auth.JWTSecret = "s"
	require.NoError(t, cfg.Validate())

	cfg.Delivery.Concurrency = 0
	cfg.RateLimit.Burst = 0
	err = cfg.Validate()
	assert.ErrorContains(t, err, "delivery.concurrency")
	assert.ErrorContains(t, err, "rateLimit")
}
