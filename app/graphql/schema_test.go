package graphql_test

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appgraphql "github.com/ultranet/catalog/app/graphql"
	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/testkit"
)

func newSchema(t *testing.T) graphql.Schema {
	t.Helper()
	cache.Use(cache.NewMemoryStore())

	db := testkit.NewDB(t, &models.Category{}, &models.Product{}, &models.User{})
	s := services.New(db, nil)
	ctx := context.Background()

	for _, name := range []string{"Toys", "Books"} {
		_, err := s.Categories.Create(ctx, map[string]any{"name": name})
		require.NoError(t, err)
	}
	for _, in := range []map[string]any{
		{"name": "Kite", "category_id": 1, "price": "15.50", "stock": 2, "enabled": false},
		{"name": "Atlas", "category_id": 2, "description": "World maps", "price": 30, "stock": 7},
	} {
		_, err := s.Products.Create(ctx, in)
		require.NoError(t, err)
	}

	schema, err := appgraphql.NewSchema(s.Products, s.Categories)
	require.NoError(t, err)
	return schema
}

func run(t *testing.T, schema graphql.Schema, query string) *graphql.Result {
	t.Helper()
	return graphql.Do(graphql.Params{Schema: schema, RequestString: query, Context: context.Background()})
}

func TestProductsQuery(t *testing.T) {
	schema := newSchema(t)

	res := run(t, schema, `{ products(categoryId: 2) { total lastPage items { id name categoryName description price enabled } } }`)
	require.Empty(t, res.Errors)

	page := res.Data.(map[string]any)["products"].(map[string]any)
	assert.Equal(t, 1, page["total"])
	assert.Equal(t, 1, page["lastPage"])
	items := page["items"].([]any)
	require.Len(t, items, 1)
	atlas := items[0].(map[string]any)
	assert.Equal(t, "Atlas", atlas["name"])
	assert.Equal(t, "Books", atlas["categoryName"])
	assert.Equal(t, "World maps", atlas["description"])
	assert.Equal(t, 30.0, atlas["price"])
	assert.Equal(t, true, atlas["enabled"])

	res = run(t, schema, `{ products(status: false) { items { name description price } } }`)
	require.Empty(t, res.Errors)
	items = res.Data.(map[string]any)["products"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Kite", items[0].(map[string]any)["name"])
	assert.Nil(t, items[0].(map[string]any)["description"])
	assert.Equal(t, 15.5, items[0].(map[string]any)["price"])
}

func TestProductQuery(t *testing.T) {
	schema := newSchema(t)

	res := run(t, schema, `{ product(id: 1) { name stock } }`)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{"name": "Kite", "stock": 2}, res.Data.(map[string]any)["product"])

	res = run(t, schema, `{ product(id: 99) { name } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Product not found", res.Errors[0].Message)
}

func TestCategoriesQuery(t *testing.T) {
	schema := newSchema(t)

	res := run(t, schema, `{ categories { id name } }`)
	require.Empty(t, res.Errors)
	assert.Equal(t, []any{
		map[string]any{"id": 2, "name": "Books"},
		map[string]any{"id": 1, "name": "Toys"},
	}, res.Data.(map[string]any)["categories"])
}

func TestResolverErrorsHideTheCause(t *testing.T) {
	cache.Use(cache.NewMemoryStore())
	db := testkit.NewDB(t, &models.Category{}, &models.Product{}, &models.User{})
	s := services.New(db, nil)
	schema, err := appgraphql.NewSchema(s.Products, s.Categories)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	res := run(t, schema, `{ products { total } }`)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Server Error", res.Errors[0].Message)
}
