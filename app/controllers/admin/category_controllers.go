package admin

import (
	"fmt"
	"net/http"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/app/views"
	"github.com/ultranet/catalog/pkg/ctx"
)

const categoriesPath = "/admin/categories"

type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

type categoryRow struct {
	Category models.Category
	Products int64
}

type categoryForm struct {
	ID     uint
	Name   string
	Action string
}

func (cc *CategoryController) Index(c *ctx.Context) {
	list, err := cc.categories.All(c.Context())
	if err != nil {
		fail(c, err, categoriesPath, nil)
		return
	}
	counts, err := cc.categories.ProductCounts(c.Context())
	if err != nil {
		fail(c, err, categoriesPath, nil)
		return
	}

	rows := make([]categoryRow, 0, len(list))
	for _, cat := range list {
		rows = append(rows, categoryRow{Category: cat, Products: counts[cat.ID]})
	}
	render(c, http.StatusOK, "categories/index", &views.Page{Title: "Categories", Data: rows})
}

func (cc *CategoryController) Create(c *ctx.Context) {
	render(c, http.StatusOK, "categories/form", &views.Page{
		Title: "Create Category",
		Data:  categoryForm{Action: categoriesPath},
	})
}

func (cc *CategoryController) Store(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		fail(c, err, categoriesPath+"/create", nil)
		return
	}
	if _, err := cc.categories.Create(c.Context(), payload); err != nil {
		fail(c, err, categoriesPath+"/create", payload)
		return
	}
	redirect(c, categoriesPath, "Category created successfully.")
}

func (cc *CategoryController) Edit(c *ctx.Context) {
	cat, err := cc.categories.Find(c.Context(), c.ParamUint("id"))
	if err != nil {
		fail(c, err, categoriesPath, nil)
		return
	}
	render(c, http.StatusOK, "categories/form", &views.Page{
		Title: "Edit Category",
		Data:  categoryForm{ID: cat.ID, Name: cat.Name, Action: fmt.Sprintf("%s/%d", categoriesPath, cat.ID)},
	})
}

func (cc *CategoryController) Update(c *ctx.Context) {
	id := c.ParamUint("id")
	back := fmt.Sprintf("%s/%d/edit", categoriesPath, id)

	payload, err := c.Input()
	if err != nil {
		fail(c, err, back, nil)
		return
	}
	if _, err := cc.categories.Update(c.Context(), id, payload); err != nil {
		fail(c, err, back, payload)
		return
	}
	redirect(c, categoriesPath, "Category updated successfully.")
}

// Destroy refuses, with a flash, while live products still use the category.
func (cc *CategoryController) Destroy(c *ctx.Context) {
	if err := cc.categories.Delete(c.Context(), c.ParamUint("id")); err != nil {
		fail(c, err, categoriesPath, nil)
		return
	}
	redirect(c, categoriesPath, "Category deleted successfully.")
}
