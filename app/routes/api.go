// Package routes maps URLs to the API and admin handlers.
package routes

import (
	"github.com/graphql-go/graphql"

	"github.com/ultranet/catalog/app/controllers"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/ctx"
	gqlserver "github.com/ultranet/catalog/pkg/graphql"
	"github.com/ultranet/catalog/pkg/middleware"
	"github.com/ultranet/catalog/pkg/router"
)

// RegisterAPI mounts the bearer-token JSON API under /api.
func RegisterAPI(r *router.Router, s *services.Services, schema graphql.Schema) {
	authController := controllers.NewAuthController(s.Auth)
	productController := controllers.NewProductController(s.Products)
	categoryController := controllers.NewCategoryController(s.Categories)

	api := r.Group("/api")
	api.Post("/login", "api.login", ctx.Wrap(authController.Login))

	protected := api.Group("", middleware.Authenticate)
	protected.Get("/products", "api.products.index", ctx.Wrap(productController.Index))
	protected.Post("/products", "api.products.store", ctx.Wrap(productController.Store))
	protected.Post("/products/bulk-delete", "api.products.bulk-delete", ctx.Wrap(productController.BulkDelete))
	protected.Get("/products/{id}", "api.products.show", ctx.Wrap(productController.Show))
	protected.Put("/products/{id}", "api.products.update", ctx.Wrap(productController.Update))
	protected.Delete("/products/{id}", "api.products.destroy", ctx.Wrap(productController.Destroy))
	protected.Get("/categories", "api.categories.index", ctx.Wrap(categoryController.Index))
	protected.Post("/graphql", "api.graphql", gqlserver.Handler(schema))
}
