package migration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ultranet/catalog/pkg/migration"
	"github.com/ultranet/catalog/pkg/testkit"
)

type shelf struct {
	ID   uint
	Name string
}

type createShelves struct{}

func (createShelves) Up(db *gorm.DB) error   { return db.AutoMigrate(&shelf{}) }
func (createShelves) Down(db *gorm.DB) error { return db.Migrator().DropTable(&shelf{}) }

func init() {
	migration.Register("2024_01_01_000001_create_shelves_table", createShelves{})
}

func TestRunRollbackStatus(t *testing.T) {
	db := testkit.NewDB(t)
	var out bytes.Buffer
	runner := migration.New(db, &out)
	ctx := context.Background()

	n, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable(&shelf{}))
	assert.Contains(t, out.String(), "Migrated:  2024_01_01_000001_create_shelves_table")

	n, err = runner.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second run has nothing pending")

	status, err := runner.Status()
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.True(t, status[0].Ran)
	assert.Equal(t, 1, status[0].Batch)

	n, err = runner.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable(&shelf{}))

	status, err = runner.Status()
	require.NoError(t, err)
	assert.False(t, status[0].Ran)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	assert.Panics(t, func() {
		migration.Register("2024_01_01_000001_create_shelves_table", createShelves{})
	})
}
