package admin

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ultranet/catalog/app/exports"
	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/app/views"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/metrics"
)

const productsPath = "/admin/products"

type ProductController struct {
	products   *services.ProductService
	categories *services.CategoryService
	now        func() time.Time
}

func NewProductController(products *services.ProductService, categories *services.CategoryService) *ProductController {
	return &ProductController{products: products, categories: categories, now: time.Now}
}

// productIndex is the data of products/index.
type productIndex struct {
	Page   repositories.ProductPage
	Search string
	Status string
	query  url.Values
}

// PageURL links to page n keeping the current filters.
func (d productIndex) PageURL(n int) string {
	q := url.Values{}
	for k, v := range d.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return productsPath + "?" + q.Encode()
}

// productForm is the data of products/form.
type productForm struct {
	Product     *models.Product
	Action      string
	Categories  []models.Category
	Name        string
	CategoryID  string
	Description string
	Price       string
	Stock       string
	Enabled     bool
}

func newProductForm(p *models.Product, categories []models.Category) productForm {
	if p == nil {
		return productForm{Action: productsPath, Categories: categories, Enabled: true}
	}
	return productForm{
		Product:     p,
		Action:      fmt.Sprintf("%s/%d", productsPath, p.ID),
		Categories:  categories,
		Name:        p.Name,
		CategoryID:  strconv.FormatUint(uint64(p.CategoryID), 10),
		Description: p.DescriptionText(),
		Price:       p.Price.StringFixed(2),
		Stock:       strconv.Itoa(p.Stock),
		Enabled:     p.Enabled,
	}
}

// Index lists products with the search and status filters.
func (pc *ProductController) Index(c *ctx.Context) {
	q := c.R.URL.Query()
	filter, err := requests.ProductFilterFrom(q, false)
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}

	page, err := pc.products.List(c.Context(), filter)
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}

	keep := url.Values{}
	for _, k := range []string{"search", "status"} {
		if v := q.Get(k); v != "" {
			keep.Set(k, v)
		}
	}
	render(c, http.StatusOK, "products/index", &views.Page{
		Title: "Products",
		Data: productIndex{
			Page:   page,
			Search: filter.Search,
			Status: q.Get("status"),
			query:  keep,
		},
	})
}

func (pc *ProductController) Create(c *ctx.Context) {
	categories, err := pc.categories.All(c.Context())
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	render(c, http.StatusOK, "products/form", &views.Page{
		Title: "Create Product",
		Data:  newProductForm(nil, categories),
	})
}

func (pc *ProductController) Store(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		fail(c, err, productsPath+"/create", nil)
		return
	}
	if _, err := pc.products.Create(c.Context(), payload); err != nil {
		fail(c, err, productsPath+"/create", payload)
		return
	}
	redirect(c, productsPath, "Product created successfully.")
}

func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.products.Find(c.Context(), c.ParamUint("id"))
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	render(c, http.StatusOK, "products/show", &views.Page{Title: p.Name, Data: p})
}

func (pc *ProductController) Edit(c *ctx.Context) {
	p, err := pc.products.Find(c.Context(), c.ParamUint("id"))
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	categories, err := pc.categories.All(c.Context())
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	render(c, http.StatusOK, "products/form", &views.Page{
		Title: "Edit Product",
		Data:  newProductForm(&p, categories),
	})
}

func (pc *ProductController) Update(c *ctx.Context) {
	id := c.ParamUint("id")
	back := fmt.Sprintf("%s/%d/edit", productsPath, id)

	payload, err := c.Input()
	if err != nil {
		fail(c, err, back, nil)
		return
	}
	if _, err := pc.products.Update(c.Context(), id, payload); err != nil {
		fail(c, err, back, payload)
		return
	}
	redirect(c, productsPath, "Product updated successfully.")
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.ParamUint("id")); err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	redirect(c, productsPath, "Product deleted successfully.")
}

// BulkDelete removes the checked rows. A bad selection is reported as a
// flash on the listing.
func (pc *ProductController) BulkDelete(c *ctx.Context) {
	payload, err := c.Input()
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}

	n, err := pc.products.BulkDelete(c.Context(), payload)
	if err != nil {
		if appErr := apperr.From(err); len(appErr.Fields) > 0 {
			c.Session().Flash(flashError, appErr.Message)
			c.Back(productsPath)
			return
		}
		fail(c, err, productsPath, nil)
		return
	}
	redirect(c, productsPath, fmt.Sprintf("%d product(s) deleted successfully.", n))
}

// Export downloads every live product as an xlsx workbook, newest first.
func (pc *ProductController) Export(c *ctx.Context) {
	products, err := pc.products.All(c.Context())
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}
	data, err := exports.Bytes(products)
	if err != nil {
		fail(c, err, productsPath, nil)
		return
	}

	metrics.ExportsTotal.WithLabelValues("download").Inc()
	if err := c.Download(exports.Filename(pc.now()), exports.ContentType, bytes.NewReader(data)); err != nil {
		fail(c, err, productsPath, nil)
	}
}
