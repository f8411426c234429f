package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/event"
	"github.com/ultranet/catalog/pkg/logger"
)

// ProductService is the single write path for products used by the admin
// pages, the API and GraphQL. Every write is validated before the store is
// touched.
type ProductService struct {
	products   *repositories.ProductRepository
	validators *requests.Validators
	events     *event.Dispatcher
}

func NewProductService(db *gorm.DB, validators *requests.Validators, events *event.Dispatcher) *ProductService {
	return &ProductService{
		products:   repositories.NewProductRepository(db),
		validators: validators,
		events:     events,
	}
}

// List returns one page of live products, newest first.
func (s *ProductService) List(ctx context.Context, f repositories.ProductFilter) (repositories.ProductPage, error) {
	return s.products.List(ctx, f)
}

// All returns every live product, newest first (used by the export).
func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx, repositories.ProductFilter{})
}

// Find returns a live product with its category, or a 404 AppError.
func (s *ProductService) Find(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return p, apperr.NotFound("Product not found").WithError(err)
	}
	return p, err
}

// Create validates payload against the store rules and inserts the product.
// Enabled defaults to true when absent.
func (s *ProductService) Create(ctx context.Context, payload map[string]any) (models.Product, error) {
	payload = requests.CleanProduct(payload)
	if err := requests.Check(ctx, s.validators.StoreProduct, payload); err != nil {
		return models.Product{}, err
	}
	in, err := requests.ProductInputFrom(payload)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Name:        *in.Name,
		CategoryID:  *in.CategoryID,
		Description: in.Description,
		Price:       *in.Price,
		Stock:       *in.Stock,
		Enabled:     true,
	}
	if in.Enabled != nil {
		p.Enabled = *in.Enabled
	}

	if err := s.products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}
	created, err := s.Find(ctx, p.ID)
	if err != nil {
		return models.Product{}, err
	}

	logger.WithCtx(ctx).Info("product created", "product_id", created.ID)
	s.events.Fire(EventProductCreated, ProductEvent{Product: created})
	return created, nil
}

// Update applies a partial update: only supplied fields change.
func (s *ProductService) Update(ctx context.Context, id uint, payload map[string]any) (models.Product, error) {
	if _, err := s.Find(ctx, id); err != nil {
		return models.Product{}, err
	}
	payload = requests.CleanProduct(payload)
	if err := requests.Check(ctx, s.validators.UpdateProduct, payload); err != nil {
		return models.Product{}, err
	}
	in, err := requests.ProductInputFrom(payload)
	if err != nil {
		return models.Product{}, err
	}

	if err := s.products.Update(ctx, id, changes(in)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, apperr.NotFound("Product not found").WithError(err)
		}
		return models.Product{}, err
	}
	updated, err := s.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	logger.WithCtx(ctx).Info("product updated", "product_id", id)
	s.events.Fire(EventProductUpdated, ProductEvent{Product: updated})
	return updated, nil
}

func changes(in requests.ProductInput) map[string]any {
	out := map[string]any{}
	if in.Name != nil {
		out["name"] = *in.Name
	}
	if in.CategoryID != nil {
		out["category_id"] = *in.CategoryID
	}
	if in.DescriptionSet {
		out["description"] = in.Description
	}
	if in.Price != nil {
		out["price"] = *in.Price
	}
	if in.Stock != nil {
		out["stock"] = *in.Stock
	}
	if in.Enabled != nil {
		out["enabled"] = *in.Enabled
	}
	return out
}

// Delete soft-deletes one product.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	p, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Product not found").WithError(err)
		}
		return err
	}

	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	s.events.Fire(EventProductDeleted, ProductEvent{Product: p})
	return nil
}

// BulkDelete validates the ids (all must be live products) and soft-deletes
// them in one statement, returning the number of rows affected.
func (s *ProductService) BulkDelete(ctx context.Context, payload map[string]any) (int64, error) {
	if err := requests.Check(ctx, s.validators.BulkDelete, payload); err != nil {
		return 0, err
	}
	ids := requests.BulkDeleteIDs(payload)

	n, err := s.products.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}

	logger.WithCtx(ctx).Info("products bulk deleted", "ids", ids, "deleted", n)
	s.events.Fire(EventProductBulkDeleted, BulkDeleteEvent{IDs: ids, Deleted: n})
	return n, nil
}
