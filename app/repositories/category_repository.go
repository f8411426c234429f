package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/pkg/orm"
)

// CategoryRepository handles database operations for Category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx).Model(&models.Category{})
}

// All returns every category ordered by name.
func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.query(ctx).Order("name ASC").Get(&out); err != nil {
		return nil, fmt.Errorf("repositories: all categories: %w", err)
	}
	return out, nil
}

// Find returns gorm.ErrRecordNotFound for an unknown id.
func (r *CategoryRepository) Find(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := r.query(ctx).Where("id = ?", id).First(&c)
	return c, err
}

// NameTaken reports whether another category (not exceptID) uses name.
func (r *CategoryRepository) NameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	q := r.query(ctx).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	n, err := q.Count()
	if err != nil {
		return false, fmt.Errorf("repositories: category name check: %w", err)
	}
	return n > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := orm.New(r.db).WithContext(ctx).Create(c); err != nil {
		return fmt.Errorf("repositories: create category: %w", err)
	}
	return nil
}

// Rename changes a category's name.
func (r *CategoryRepository) Rename(ctx context.Context, id uint, name string) error {
	n, err := r.query(ctx).Where("id = ?", id).Updates(map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("repositories: rename category %d: %w", id, err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a category row.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	n, err := orm.New(r.db).WithContext(ctx).Delete(&models.Category{}, id)
	if err != nil {
		return fmt.Errorf("repositories: delete category %d: %w", id, err)
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FirstOrCreate returns the category called name, inserting it if needed.
func (r *CategoryRepository) FirstOrCreate(ctx context.Context, name string) (models.Category, error) {
	c := models.Category{Name: name}
	err := r.db.WithContext(ctx).Where(models.Category{Name: name}).FirstOrCreate(&c).Error
	return c, err
}
