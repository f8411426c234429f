package orm_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ultranet/catalog/pkg/orm"
	"github.com/ultranet/catalog/pkg/testkit"
)

type shelf struct {
	ID   uint
	Name string
}

type book struct {
	ID        uint
	Title     string
	ShelfID   uint
	Shelf     shelf
	CreatedAt time.Time
	DeletedAt gorm.DeletedAt
}

func seed(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	s := shelf{Name: "A"}
	require.NoError(t, db.Create(&s).Error)
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&book{Title: fmt.Sprintf("b%02d", i), ShelfID: s.ID}).Error)
	}
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, orm.Pagination{Total: 0, PerPage: 15, CurrentPage: 1, LastPage: 1}, orm.NewPagination(0, 1, 15))
	assert.Equal(t, 2, orm.NewPagination(16, 1, 15).LastPage)
	assert.Equal(t, 1, orm.NewPagination(15, 1, 15).LastPage)
}

func TestPaginatePreloadsAndCounts(t *testing.T) {
	db := testkit.NewDB(t, &shelf{}, &book{})
	seed(t, db, 17)

	var books []book
	page, err := orm.New(db).WithContext(context.Background()).
		Model(&book{}).
		Preload("Shelf").
		Order("id DESC").
		Paginate(&books, 2, 15)
	require.NoError(t, err)

	assert.Equal(t, orm.Pagination{Total: 17, PerPage: 15, CurrentPage: 2, LastPage: 2}, page)
	require.Len(t, books, 2)
	assert.Equal(t, "b02", books[0].Title)
	assert.Equal(t, "A", books[0].Shelf.Name)
}

func TestPaginateClampsPage(t *testing.T) {
	db := testkit.NewDB(t, &shelf{}, &book{})
	seed(t, db, 3)

	var books []book
	page, err := orm.New(db).Model(&book{}).Paginate(&books, 0, 15)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, books, 3)

	books = nil
	page, err = orm.New(db).Model(&book{}).Order("id").Paginate(&books, math.MaxInt, 15)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32/15+1, page.CurrentPage)
	assert.EqualValues(t, 3, page.Total)
	assert.Empty(t, books)
}

func TestDeleteIsSoft(t *testing.T) {
	db := testkit.NewDB(t, &shelf{}, &book{})
	seed(t, db, 3)

	n, err := orm.New(db).Where("id IN ?", []uint{1, 2}).Delete(&book{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	live, err := orm.New(db).Model(&book{}).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, live)

	all, err := orm.New(db).Model(&book{}).Unscoped().Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, all)
}
