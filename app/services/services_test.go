package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/event"
	"github.com/ultranet/catalog/pkg/testkit"
)

type recorder struct {
	events []string
}

func (r *recorder) listen(d *event.Dispatcher, names ...string) {
	for _, name := range names {
		d.Listen(name, func(any) { r.events = append(r.events, name) })
	}
}

func setup(t *testing.T) (*services.Services, *recorder) {
	t.Helper()
	cache.Use(cache.NewMemoryStore())

	db := testkit.NewDB(t, &models.Category{}, &models.Product{}, &models.User{})
	require.NoError(t, db.Create(&models.Category{Name: "Books"}).Error)
	require.NoError(t, db.Create(&models.Category{Name: "Toys"}).Error)

	d := event.New()
	rec := &recorder{}
	rec.listen(d,
		services.EventProductCreated,
		services.EventProductUpdated,
		services.EventProductDeleted,
		services.EventProductBulkDeleted,
		services.EventCategoryChanged,
	)
	return services.New(db, d), rec
}

func status(err error) int {
	return apperr.From(err).StatusCode
}

func TestCreateProductDefaultsAndSanitises(t *testing.T) {
	s, rec := setup(t)
	ctx := context.Background()

	p, err := s.Products.Create(ctx, map[string]any{
		"name":        "<script>x</script>Atlas",
		"category_id": json.Number("1"),
		"description": "<p>Maps &amp; more</p>",
		"price":       "12.345",
		"stock":       json.Number("5"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Atlas", p.Name)
	assert.Equal(t, "Maps & more", p.DescriptionText())
	assert.Equal(t, "12.35", p.Price.StringFixed(2))
	assert.True(t, p.Enabled)
	assert.Equal(t, "Books", p.Category.Name)
	assert.Equal(t, []string{services.EventProductCreated}, rec.events)
}

func TestCreateProductValidation(t *testing.T) {
	s, rec := setup(t)

	_, err := s.Products.Create(context.Background(), map[string]any{
		"name":        "Atlas",
		"category_id": json.Number("9"),
		"price":       json.Number("-1"),
		"stock":       "many",
	})
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Equal(t, []string{"Selected category does not exist"}, appErr.Fields["category_id"])
	assert.Equal(t, []string{"Stock must be an integer"}, appErr.Fields["stock"])
	assert.Contains(t, appErr.Fields, "price")
	assert.Empty(t, rec.events)
}

func TestMarkupOnlyNameIsRequired(t *testing.T) {
	s, rec := setup(t)
	ctx := context.Background()

	_, err := s.Products.Create(ctx, map[string]any{
		"name": "<b></b>", "category_id": 1, "price": 1, "stock": 1,
	})
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Equal(t, []string{"Product name is required"}, appErr.Fields["name"])

	p, err := s.Products.Create(ctx, map[string]any{"name": "Atlas", "category_id": 1, "price": 1, "stock": 1})
	require.NoError(t, err)

	_, err = s.Products.Update(ctx, p.ID, map[string]any{"name": "  <i> </i> "})
	assert.Equal(t, []string{"Product name is required"}, apperr.From(err).Fields["name"])

	_, err = s.Categories.Create(ctx, map[string]any{"name": "<script>x</script>"})
	assert.Equal(t, "Category name is required", apperr.From(err).Message)

	unchanged, err := s.Products.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Atlas", unchanged.Name)
	assert.Equal(t, []string{services.EventProductCreated}, rec.events)
}

func TestUpdateProductPartialAndClearsDescription(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	p, err := s.Products.Create(ctx, map[string]any{
		"name": "Atlas", "category_id": 1, "description": "Old", "price": 10, "stock": 1, "enabled": false,
	})
	require.NoError(t, err)

	updated, err := s.Products.Update(ctx, p.ID, map[string]any{"category_id": 2, "description": nil})
	require.NoError(t, err)
	assert.Equal(t, "Atlas", updated.Name)
	assert.Equal(t, "Toys", updated.Category.Name)
	assert.Nil(t, updated.Description)
	assert.False(t, updated.Enabled)

	_, err = s.Products.Update(ctx, 999, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status(err))

	_, err = s.Products.Update(ctx, p.ID, map[string]any{"name": nil})
	assert.Equal(t, http.StatusUnprocessableEntity, status(err))
}

func TestDeleteAndBulkDelete(t *testing.T) {
	s, rec := setup(t)
	ctx := context.Background()

	var ids []any
	for _, name := range []string{"A", "B", "C"} {
		p, err := s.Products.Create(ctx, map[string]any{"name": name, "category_id": 1, "price": 1, "stock": 1})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	require.NoError(t, s.Products.Delete(ctx, 1))
	assert.Equal(t, http.StatusNotFound, status(s.Products.Delete(ctx, 1)))

	_, err := s.Products.BulkDelete(ctx, map[string]any{"ids": ids})
	assert.Equal(t, http.StatusUnprocessableEntity, status(err), "a deleted id fails the batch")

	_, err = s.Products.BulkDelete(ctx, map[string]any{"ids": []any{}})
	assert.Equal(t, "No products selected for deletion", apperr.From(err).Message)

	n, err := s.Products.BulkDelete(ctx, map[string]any{"ids": ids[1:]})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.Equal(t, []string{
		services.EventProductCreated, services.EventProductCreated, services.EventProductCreated,
		services.EventProductDeleted, services.EventProductBulkDeleted,
	}, rec.events)
}

func TestCategoryListIsCachedUntilChanged(t *testing.T) {
	s, rec := setup(t)
	ctx := context.Background()

	list, err := s.Categories.All(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var cached []models.Category
	assert.True(t, cache.Get(ctx, services.CategoriesCacheKey, &cached))

	_, err = s.Categories.Create(ctx, map[string]any{"name": "Art"})
	require.NoError(t, err)
	assert.False(t, cache.Get(ctx, services.CategoriesCacheKey, &cached))

	list, err = s.Categories.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Art", list[0].Name)
	assert.Equal(t, []string{services.EventCategoryChanged}, rec.events)
}

func TestCategoryRules(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	_, err := s.Categories.Create(ctx, map[string]any{"name": "Books"})
	assert.Equal(t, []string{"The name has already been taken."}, apperr.From(err).Fields["name"])

	_, err = s.Categories.Create(ctx, map[string]any{})
	assert.Equal(t, "Category name is required", apperr.From(err).Message)

	// Renaming to its own name is allowed.
	c, err := s.Categories.Update(ctx, 1, map[string]any{"name": "Books"})
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)

	_, err = s.Products.Create(ctx, map[string]any{"name": "Atlas", "category_id": 1, "price": 1, "stock": 1})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, status(s.Categories.Delete(ctx, 1)))
	require.NoError(t, s.Categories.Delete(ctx, 2))
	assert.Equal(t, http.StatusNotFound, status(s.Categories.Delete(ctx, 2)))

	counts, err := s.Categories.ProductCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{1: 1}, counts)
}

func TestAuthAttemptAndCreateUser(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	u, err := s.Auth.CreateUser(ctx, "Admin", "Admin@Example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", u.Email)

	// Running it again updates the same row.
	again, err := s.Auth.CreateUser(ctx, "Root", "admin@example.com", "other-password")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, err = s.Auth.Attempt(ctx, requests.Credentials{Email: "admin@example.com", Password: "secret-password"})
	assert.Equal(t, services.ErrBadCredentials, apperr.From(err).Message)

	user, err := s.Auth.Attempt(ctx, requests.Credentials{Email: "admin@example.com", Password: "other-password"})
	require.NoError(t, err)
	assert.Equal(t, "Root", user.Name)

	_, err = s.Auth.Attempt(ctx, requests.Credentials{Email: "ghost@example.com", Password: "x"})
	assert.Equal(t, services.ErrBadCredentials, apperr.From(err).Message)

	_, err = s.Auth.Attempt(ctx, requests.Credentials{Email: "not-an-email"})
	appErr := apperr.From(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")

	token, err := s.Auth.IssueToken(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Positive(t, token.ExpiresIn)

	_, err = s.Auth.User(ctx, 404)
	assert.Equal(t, http.StatusUnauthorized, status(err))
}

func TestCategoryWithDeletedProductsIsStillReferenced(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	db := testkit.NewDBWithForeignKeys(t, &models.Category{}, &models.Product{}, &models.User{})
	s := services.New(db, nil)
	ctx := context.Background()

	c, err := s.Categories.Create(ctx, map[string]any{"name": "Archive"})
	require.NoError(t, err)
	p, err := s.Products.Create(ctx, map[string]any{"name": "Ledger", "category_id": c.ID, "price": 1, "stock": 1})
	require.NoError(t, err)
	require.NoError(t, s.Products.Delete(ctx, p.ID))

	err = s.Categories.Delete(ctx, c.ID)
	appErr := apperr.From(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "Category cannot be deleted while deleted products still reference it.", appErr.Message)

	_, err = s.Categories.Find(ctx, c.ID)
	assert.NoError(t, err)

	empty, err := s.Categories.Create(ctx, map[string]any{"name": "Empty"})
	require.NoError(t, err)
	assert.NoError(t, s.Categories.Delete(ctx, empty.ID))
}
