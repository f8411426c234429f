// Package resources shapes models for the JSON API.
package resources

import (
	"time"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/pkg/resource"
)

// Product renders {id, name, category_id, category_name, description, price,
// stock, enabled, created_at, updated_at}. Price is a JSON number.
type Product struct{ resource.Base }

func (Product) ToArray(v any) resource.Map {
	p := v.(models.Product)
	price, _ := p.Price.Round(2).Float64()
	return resource.Map{
		"id":            p.ID,
		"name":          p.Name,
		"category_id":   p.CategoryID,
		"category_name": p.CategoryName(),
		"description":   p.Description,
		"price":         price,
		"stock":         p.Stock,
		"enabled":       p.Enabled,
		"created_at":    p.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Category renders {id, name}.
type Category struct{ resource.Base }

func (Category) ToArray(v any) resource.Map {
	c := v.(models.Category)
	return resource.Map{"id": c.ID, "name": c.Name}
}
