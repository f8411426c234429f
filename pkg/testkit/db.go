package testkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database for t and migrates models.
// The database lives as long as its single connection, which is closed when
// the test ends.
func NewDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	return open(t, "", models)
}

// NewDBWithForeignKeys is NewDB with sqlite foreign key enforcement on, so
// constraints behave as they do on the server databases.
func NewDBWithForeignKeys(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	return open(t, "&_foreign_keys=1", models)
}

func open(t *testing.T, params string, models []any) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared%s", name, uuid.NewString()[:8], params)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "testkit: open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "testkit: migrate")
	}
	return db
}
