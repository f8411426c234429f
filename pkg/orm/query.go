// Package orm is a thin chainable wrapper over gorm used by the
// repositories. It adds page-based pagination and query timing on top of the
// underlying *gorm.DB.
//
//	page, err := orm.New(db).WithContext(ctx).
//	    Model(&models.Product{}).
//	    Where("enabled = ?", true).
//	    Preload("Category").
//	    Order("created_at DESC").
//	    Paginate(&products, 2, 15)
package orm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ultranet/catalog/pkg/metrics"
	"gorm.io/gorm"
)

// Pagination is the page metadata returned with a listing.
type Pagination struct {
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
}

// NewPagination computes the last page for total rows. An empty result still
// has one (empty) page.
func NewPagination(total int64, page, perPage int) Pagination {
	last := 1
	if total > 0 && perPage > 0 {
		last = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return Pagination{Total: total, PerPage: perPage, CurrentPage: page, LastPage: last}
}

type preload struct {
	assoc string
	args  []any
}

// Chain methods return a new Query.
// Preloads are held back until rows are loaded so counts stay plain.
type Query struct {
	db       *gorm.DB
	preloads []preload
}

func (q *Query) with(db *gorm.DB) *Query {
	return &Query{db: db, preloads: q.preloads}
}

// loader returns the handle with the pending preloads applied.
func (q *Query) loader() *gorm.DB {
	db := q.db
	for _, p := range q.preloads {
		db = db.Preload(p.assoc, p.args...)
	}
	return db
}

// New starts a query on db.
func New(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return q.with(q.db.WithContext(ctx))
}

func (q *Query) Model(v any) *Query {
	return q.with(q.db.Model(v))
}

func (q *Query) Where(query any, args ...any) *Query {
	return q.with(q.db.Where(query, args...))
}

func (q *Query) Preload(assoc string, args ...any) *Query {
	ps := make([]preload, len(q.preloads), len(q.preloads)+1)
	copy(ps, q.preloads)
	return &Query{db: q.db, preloads: append(ps, preload{assoc: assoc, args: args})}
}

func (q *Query) Order(value any) *Query {
	return q.with(q.db.Order(value))
}

// Unscoped includes soft-deleted rows.
func (q *Query) Unscoped() *Query {
	return q.with(q.db.Unscoped())
}

func (q *Query) Get(dest any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.loader().Find(dest).Error
}

func (q *Query) First(dest any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.loader().First(dest).Error
}

func (q *Query) Count() (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v any) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return q.db.Create(v).Error
}

func (q *Query) Save(v any) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return q.db.Save(v).Error
}

// Updates writes the given columns only.
func (q *Query) Updates(values map[string]any) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

// Delete deletes (soft-deletes, for models with gorm.DeletedAt) the rows
// matching the query.
func (q *Query) Delete(model any, conds ...any) (int64, error) {
	defer metrics.ObserveDBQuery("delete", time.Now())
	res := q.db.Delete(model, conds...)
	return res.RowsAffected, res.Error
}

// Paginate counts the matching rows, then loads page into dest.
// page and perPage below 1 are treated as 1. page is capped so the offset
// stays within a 32-bit integer.
func (q *Query) Paginate(dest any, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if maxPage := math.MaxInt32/perPage + 1; page > maxPage {
		page = maxPage
	}

	// gorm drops ORDER BY for Count; a fresh session keeps the count's
	// statement from leaking into the find.
	total, err := (&Query{db: q.db.Session(&gorm.Session{})}).Count()
	if err != nil {
		return Pagination{}, fmt.Errorf("orm: paginate count: %w", err)
	}

	if err := q.with(q.db.Session(&gorm.Session{}).Offset((page - 1) * perPage).Limit(perPage)).Get(dest); err != nil {
		return Pagination{}, fmt.Errorf("orm: paginate find: %w", err)
	}

	return NewPagination(total, page, perPage), nil
}
