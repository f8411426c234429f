package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/pkg/orm"
)

// PerPage is the listing page size.
const PerPage = 15

// ProductFilter narrows a product listing. Nil pointers and empty strings
// mean "no filter".
type ProductFilter struct {
	Search     string
	Status     *bool
	CategoryID *uint
	Page       int
}

// ProductPage is one page of a listing.
type ProductPage struct {
	Items []models.Product
	orm.Pagination
}

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.Product{})
}

// likeEscaper makes search text literal inside LIKE. "[" is a wildcard on
// SQL Server.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

// filtered applies f and the listing order. Soft-deleted rows are excluded by
// gorm's DeletedAt scope.
func (r *ProductRepository) filtered(ctx context.Context, f ProductFilter) *orm.Query {
	q := r.query(ctx).Preload("Category")
	if f.Search != "" {
		q = q.Where("products.name LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(f.Search)+"%")
	}
	if f.Status != nil {
		q = q.Where("products.enabled = ?", *f.Status)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	return q.Order("products.created_at DESC").Order("products.id DESC")
}

// List returns one page of products, newest first, each with its category.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) (ProductPage, error) {
	var items []models.Product
	p, err := r.filtered(ctx, f).Paginate(&items, f.Page, PerPage)
	if err != nil {
		return ProductPage{}, fmt.Errorf("repositories: list products: %w", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return ProductPage{Items: items, Pagination: p}, nil
}

// All returns every live product matching f in listing order, unpaginated.
func (r *ProductRepository) All(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var items []models.Product
	if err := r.filtered(ctx, f).Get(&items); err != nil {
		return nil, fmt.Errorf("repositories: all products: %w", err)
	}
	return items, nil
}

// Find loads a live product with its category. A missing or deleted id
// returns gorm.ErrRecordNotFound.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Preload("Category").Where("products.id = ?", id).First(&p)
	return p, err
}

// FindWithTrashed loads a product even when it has been soft-deleted.
func (r *ProductRepository) FindWithTrashed(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Unscoped().Where("products.id = ?", id).First(&p)
	return p, err
}

// Create inserts p and sets its ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := orm.New(r.db).WithContext(ctx).Create(p); err != nil {
		return fmt.Errorf("repositories: create product: %w", err)
	}
	return nil
}

// Update writes only the given columns of a live product in one statement.
// It returns gorm.ErrRecordNotFound when nothing matched.
func (r *ProductRepository) Update(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	n, err := r.query(ctx).Where("id = ?", id).Updates(changes)
	if err != nil {
		return fmt.Errorf("repositories: update product %d: %w", id, err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft-deletes a live product. It returns gorm.ErrRecordNotFound when
// the id is unknown or already deleted.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	n, err := orm.New(r.db).WithContext(ctx).Delete(&models.Product{}, id)
	if err != nil {
		return fmt.Errorf("repositories: delete product %d: %w", id, err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkDelete soft-deletes every live product in ids with a single UPDATE and
// returns the number of rows affected.
func (r *ProductRepository) BulkDelete(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := orm.New(r.db).WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	if err != nil {
		return 0, fmt.Errorf("repositories: bulk delete products: %w", err)
	}
	return n, nil
}

// CountByCategory counts live products in a category.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID uint) (int64, error) {
	return r.query(ctx).Where("category_id = ?", categoryID).Count()
}

// CountByCategoryWithTrashed counts every product row in a category,
// soft-deleted ones included. Those rows still hold the foreign key.
func (r *ProductRepository) CountByCategoryWithTrashed(ctx context.Context, categoryID uint) (int64, error) {
	return r.query(ctx).Unscoped().Where("category_id = ?", categoryID).Count()
}

// CountsByCategory counts live products per category in one grouped query.
func (r *ProductRepository) CountsByCategory(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: count products by category: %w", err)
	}

	out := make(map[uint]int64, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Total
	}
	return out, nil
}
