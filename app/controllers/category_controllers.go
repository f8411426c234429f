package controllers

import (
	"github.com/ultranet/catalog/app/resources"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/resource"
)

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (cc *CategoryController) Index(c *ctx.Context) {
	list, err := cc.categories.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	resource.CollectionOf(resources.Category{}, list).Respond(c.W)
}
