package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/event"
	"github.com/ultranet/catalog/pkg/logger"
)

// CategoriesCacheKey holds the cached category list.
const CategoriesCacheKey = "categories:all"

const categoriesTTL = 10 * time.Minute

// CategoryService manages categories. The full list is read on every product
// form, so it is cached until a category changes.
type CategoryService struct {
	categories *repositories.CategoryRepository
	products   *repositories.ProductRepository
	validators *requests.Validators
	events     *event.Dispatcher
}

func NewCategoryService(db *gorm.DB, validators *requests.Validators, events *event.Dispatcher) *CategoryService {
	return &CategoryService{
		categories: repositories.NewCategoryRepository(db),
		products:   repositories.NewProductRepository(db),
		validators: validators,
		events:     events,
	}
}

// All returns every category ordered by name.
func (s *CategoryService) All(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := cache.Remember(ctx, CategoriesCacheKey, categoriesTTL, &out, func() (any, error) {
		return s.categories.All(ctx)
	})
	return out, err
}

// ProductCounts maps category id to its number of live products.
func (s *CategoryService) ProductCounts(ctx context.Context) (map[uint]int64, error) {
	return s.products.CountsByCategory(ctx)
}

func (s *CategoryService) Find(ctx context.Context, id uint) (models.Category, error) {
	c, err := s.categories.Find(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c, apperr.NotFound("Category not found").WithError(err)
	}
	return c, err
}

func (s *CategoryService) validName(ctx context.Context, payload map[string]any, exceptID uint) (string, error) {
	payload = requests.CleanCategory(payload)
	if err := requests.Check(ctx, s.validators.Category, payload); err != nil {
		return "", err
	}
	name := requests.CategoryName(payload)
	taken, err := s.categories.NameTaken(ctx, name, exceptID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.FieldError("name", "The name has already been taken.")
	}
	return name, nil
}

// Create validates payload and inserts a category with a unique name.
func (s *CategoryService) Create(ctx context.Context, payload map[string]any) (models.Category, error) {
	name, err := s.validName(ctx, payload, 0)
	if err != nil {
		return models.Category{}, err
	}
	c := models.Category{Name: name}
	if err := s.categories.Create(ctx, &c); err != nil {
		return models.Category{}, err
	}
	s.changed(ctx, c, false)
	return c, nil
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id uint, payload map[string]any) (models.Category, error) {
	c, err := s.Find(ctx, id)
	if err != nil {
		return c, err
	}
	name, err := s.validName(ctx, payload, id)
	if err != nil {
		return c, err
	}
	if err := s.categories.Rename(ctx, id, name); err != nil {
		return c, err
	}
	c.Name = name
	s.changed(ctx, c, false)
	return c, nil
}

// Delete removes a category that no product row references. Soft-deleted
// products are retained and keep their category_id, so they block too.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	c, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	live, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if live > 0 {
		return apperr.Conflict("Category cannot be deleted while products use it.")
	}
	all, err := s.products.CountByCategoryWithTrashed(ctx, id)
	if err != nil {
		return err
	}
	if all > 0 {
		return apperr.Conflict("Category cannot be deleted while deleted products still reference it.")
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, c, true)
	return nil
}

func (s *CategoryService) changed(ctx context.Context, c models.Category, deleted bool) {
	if err := cache.Forget(ctx, CategoriesCacheKey); err != nil {
		logger.WithCtx(ctx).Error("category cache invalidation failed", "error", err)
	}
	logger.WithCtx(ctx).Info("category changed", "category_id", c.ID, "deleted", deleted)
	s.events.Fire(EventCategoryChanged, CategoryEvent{Category: c, Deleted: deleted})
}
