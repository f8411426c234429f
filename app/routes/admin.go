package routes

import (
	"github.com/ultranet/catalog/app/controllers/admin"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/middleware"
	"github.com/ultranet/catalog/pkg/router"
	"github.com/ultranet/catalog/pkg/ws"
)

// RegisterAdmin mounts the session-authenticated admin pages.
func RegisterAdmin(r *router.Router, s *services.Services, hub *ws.Hub) {
	authController := admin.NewAuthController(s.Auth)
	productController := admin.NewProductController(s.Products, s.Categories)
	categoryController := admin.NewCategoryController(s.Categories)

	guest := r.Group("", middleware.Guest(admin.HomePath))
	guest.Get(admin.LoginPath, "login", ctx.Wrap(authController.ShowLogin))
	guest.Post(admin.LoginPath, "login.attempt", ctx.Wrap(authController.Login))
	r.Post("/logout", "logout", ctx.Wrap(authController.Logout))

	a := r.Group("/admin", middleware.SessionAuth(admin.LoginPath))
	a.Get("/products", "admin.products.index", ctx.Wrap(productController.Index))
	a.Get("/products/create", "admin.products.create", ctx.Wrap(productController.Create))
	a.Get("/products/export", "admin.products.export", ctx.Wrap(productController.Export))
	a.Post("/products", "admin.products.store", ctx.Wrap(productController.Store))
	a.Post("/products/bulk-delete", "admin.products.bulk-delete", ctx.Wrap(productController.BulkDelete))
	a.Get("/products/{id}", "admin.products.show", ctx.Wrap(productController.Show))
	a.Get("/products/{id}/edit", "admin.products.edit", ctx.Wrap(productController.Edit))
	a.Put("/products/{id}", "admin.products.update", ctx.Wrap(productController.Update))
	a.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(productController.Destroy))

	a.Get("/categories", "admin.categories.index", ctx.Wrap(categoryController.Index))
	a.Get("/categories/create", "admin.categories.create", ctx.Wrap(categoryController.Create))
	a.Post("/categories", "admin.categories.store", ctx.Wrap(categoryController.Store))
	a.Get("/categories/{id}/edit", "admin.categories.edit", ctx.Wrap(categoryController.Edit))
	a.Put("/categories/{id}", "admin.categories.update", ctx.Wrap(categoryController.Update))
	a.Delete("/categories/{id}", "admin.categories.destroy", ctx.Wrap(categoryController.Destroy))

	a.Get("/ws", "admin.ws", ctx.Wrap(admin.Stream(hub)))
}
