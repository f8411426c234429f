package controllers

import (
	"fmt"
	"net/http"

	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/app/resources"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/resource"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index lists live products, filtered by category_id, search and status.
func (pc *ProductController) Index(c *ctx.Context) {
	filter, err := requests.ProductFilterFrom(c.R.URL.Query(), true)
	if err != nil {
		c.Fail(err)
		return
	}

	page, err := pc.products.List(c.Context(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	resource.CollectionOf(resources.Product{}, page.Items).
		WithPagination(page.Pagination).
		Respond(c.W)
}

func (pc *ProductController) Store(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		c.Fail(err)
		return
	}

	p, err := pc.products.Create(c.Context(), payload)
	if err != nil {
		c.Fail(err)
		return
	}
	resource.New(resources.Product{}, p).
		WithMessage("Product created successfully").
		Status(http.StatusCreated).
		Respond(c.W)
}

func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.products.Find(c.Context(), c.ParamUint("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	resource.New(resources.Product{}, p).Respond(c.W)
}

func (pc *ProductController) Update(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		c.Fail(err)
		return
	}

	p, err := pc.products.Update(c.Context(), c.ParamUint("id"), payload)
	if err != nil {
		c.Fail(err)
		return
	}
	resource.New(resources.Product{}, p).
		WithMessage("Product updated successfully").
		Respond(c.W)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.ParamUint("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product deleted successfully", nil)
}

// BulkDelete soft-deletes every id in one statement.
func (pc *ProductController) BulkDelete(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		c.Fail(err)
		return
	}

	n, err := pc.products.BulkDelete(c.Context(), payload)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, fmt.Sprintf("%d product(s) deleted successfully", n), map[string]any{
		"deleted_count": n,
	})
}
