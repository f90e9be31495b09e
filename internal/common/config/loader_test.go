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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: pizza-service
database:
  postgres:
    host: localhost
    port: 5432
    database: pizza
    user: pizza
    password: secret
auth:
  jwt_secret: test-secret
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "pizza-service", cfg.App.Name)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 10, cfg.Pagination.OrdersPerPage)
	assert.Equal(t, 10, cfg.Pagination.FranchisesPerPage)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Contains(t, cfg.Database.Postgres.GetDSN(), "dbname=pizza")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, GetDuration(10000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestLoadFromFile_MissingJWTSecret(t *testing.T) {
	path := writeConfigFile(t, `
database:
  postgres:
    host: localhost
    database: pizza
    user: pizza
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoadFromFile_RedisAddressRequiredWhenEnabled(t *testing.T) {
	path := writeConfigFile(t, `
database:
  postgres:
    host: localhost
    database: pizza
    user: pizza
  redis:
    enabled: true
auth:
  jwt_secret: test-secret
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.address")
}
