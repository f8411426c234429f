package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFilesPrecedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port":"7000","db_driver":"postgres","jwt_ttl_minutes":30}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("APP_PORT=7100\nREDIS_ADDR=\"cache:6379\"\n# comment\n"), 0o644))
	t.Setenv("REDIS_ADDR", "env-cache:6379")

	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "7100", get("APP_PORT", ""), ".env overrides app.json")
	assert.Equal(t, "postgres", get("DB_DRIVER", ""))
	assert.Equal(t, "env-cache:6379", get("REDIS_ADDR", ""), "process env overrides .env")
	assert.Equal(t, 30*time.Minute, minutes("JWT_TTL_MINUTES", 1))
}

func TestMissingFilesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, ".env")))
}

func TestDatabaseDSNFallsBackPerDriver(t *testing.T) {
	Set("DATABASE_DSN", "")
	Set("DB_DRIVER", "mysql")
	t.Cleanup(func() { Set("DB_DRIVER", defaultDatabaseDriver) })

	assert.Equal(t, defaultMySQLDSN, DatabaseDSN())

	Set("DB_DRIVER", "oracle")
	assert.Equal(t, "sqlite", DatabaseDriver())
}

func TestCacheDriver(t *testing.T) {
	Set("CACHE_DRIVER", "MEMORY")
	t.Cleanup(func() { Set("CACHE_DRIVER", defaultCacheDriver) })
	assert.Equal(t, "memory", CacheDriver())

	Set("CACHE_DRIVER", "anything")
	assert.Equal(t, "redis", CacheDriver())
}
