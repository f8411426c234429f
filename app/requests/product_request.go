// Package requests declares the rule sets and messages that gate every write,
// and turns a validated payload into typed input.
package requests

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/validate"
)

var (
	storeProductRules = validate.Rules{
		{Field: "name", Rules: "required|string|max:255"},
		{Field: "category_id", Rules: "required|integer|exists:categories,id"},
		{Field: "description", Rules: "nullable|string"},
		{Field: "price", Rules: "required|numeric|min:0"},
		{Field: "stock", Rules: "required|integer|min:0"},
		{Field: "enabled", Rules: "boolean"},
	}

	updateProductRules = validate.Rules{
		{Field: "name", Rules: "sometimes|required|string|max:255"},
		{Field: "category_id", Rules: "sometimes|required|integer|exists:categories,id"},
		{Field: "description", Rules: "nullable|string"},
		{Field: "price", Rules: "sometimes|required|numeric|min:0"},
		{Field: "stock", Rules: "sometimes|required|integer|min:0"},
		{Field: "enabled", Rules: "boolean"},
	}

	bulkDeleteRules = validate.Rules{
		{Field: "ids", Rules: "required|array|min:1"},
		{Field: "ids.*", Rules: "required|integer|exists:products,id"},
	}

	productMessages = validate.Messages{
		"name.required":        "Product name is required",
		"category_id.required": "Category is required",
		"category_id.exists":   "Selected category does not exist",
		"price.required":       "Price is required",
		"price.numeric":        "Price must be a number",
		"stock.required":       "Stock is required",
		"stock.integer":        "Stock must be an integer",
	}

	bulkDeleteMessages = validate.Messages{
		"ids.required": "No products selected for deletion",
		"ids.array":    "Invalid data format",
		"ids.min":      "At least one product must be selected",
		"ids.*.exists": "One or more selected products do not exist",
	}
)

// Validators holds the compiled rule sets wired to a database lookup.
type Validators struct {
	StoreProduct  *validate.Validator
	UpdateProduct *validate.Validator
	BulkDelete    *validate.Validator
	Category      *validate.Validator
}

// NewValidators compiles every rule set with exists resolving through fn.
func NewValidators(fn validate.ExistsFunc) *Validators {
	return &Validators{
		StoreProduct:  validate.New(storeProductRules, productMessages).WithExists(fn),
		UpdateProduct: validate.New(updateProductRules, productMessages).WithExists(fn),
		BulkDelete:    validate.New(bulkDeleteRules, bulkDeleteMessages).WithExists(fn),
		Category:      validate.New(categoryRules, categoryMessages).WithExists(fn),
	}
}

// Check runs v and converts failures to a 422 AppError.
func Check(ctx context.Context, v *validate.Validator, payload map[string]any) error {
	errs, err := v.Validate(ctx, payload)
	if err != nil {
		return fmt.Errorf("requests: validate: %w", err)
	}
	if validate.HasErrors(errs) {
		return apperr.Validation(v.Summary(errs), errs)
	}
	return nil
}

// ─── Typed input ─────────────────────────────────────────────────────────────

// ProductInput is a validated product payload. Nil fields were not supplied.
type ProductInput struct {
	Name        *string
	CategoryID  *uint
	Description *string
	// DescriptionSet distinguishes "clear the description" from "not sent".
	DescriptionSet bool
	Price          *decimal.Decimal
	Stock          *int
	Enabled        *bool
}

// CleanProduct returns a copy of payload with markup stripped from name and
// description. It runs before the rules so required sees the stored text.
func CleanProduct(payload map[string]any) map[string]any {
	return cleanText(payload, "name", "description")
}

// ProductInputFrom reads a cleaned payload that has already passed the store
// or update rules.
func ProductInputFrom(payload map[string]any) (ProductInput, error) {
	var in ProductInput

	if v, ok := payload["name"]; ok && v != nil {
		name := fmt.Sprint(v)
		in.Name = &name
	}
	if v, ok := payload["category_id"]; ok && v != nil {
		n, ok := validate.Int(v)
		if !ok || n < 1 {
			return in, apperr.FieldError("category_id", "Selected category does not exist")
		}
		id := uint(n)
		in.CategoryID = &id
	}
	if v, ok := payload["description"]; ok {
		in.DescriptionSet = true
		if v != nil {
			if desc := fmt.Sprint(v); desc != "" {
				in.Description = &desc
			}
		}
	}
	if v, ok := payload["price"]; ok && v != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return in, apperr.FieldError("price", "Price must be a number")
		}
		price = price.Round(2)
		in.Price = &price
	}
	if v, ok := payload["stock"]; ok && v != nil {
		n, ok := validate.Int(v)
		if !ok {
			return in, apperr.FieldError("stock", "Stock must be an integer")
		}
		stock := int(n)
		in.Stock = &stock
	}
	if v, ok := payload["enabled"]; ok && v != nil {
		b, ok := validate.Bool(v)
		if !ok {
			return in, apperr.FieldError("enabled", "The enabled field must be true or false.")
		}
		in.Enabled = &b
	}
	return in, nil
}

// BulkDeleteIDs reads the ids of a payload that passed the bulk delete rules.
func BulkDeleteIDs(payload map[string]any) []uint {
	list, _ := payload["ids"].([]any)
	ids := make([]uint, 0, len(list))
	for _, v := range list {
		if n, ok := validate.Int(v); ok && n > 0 {
			ids = append(ids, uint(n))
		}
	}
	return ids
}

// ─── Sanitising ──────────────────────────────────────────────────────────────

var strict = bluemonday.StrictPolicy()

// Sanitize strips all markup from user text. Entities bluemonday escapes are
// decoded again since templates escape on output.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func cleanText(payload map[string]any, fields ...string) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	for _, f := range fields {
		if s, ok := out[f].(string); ok {
			out[f] = Sanitize(s)
		}
	}
	return out
}
