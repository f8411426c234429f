// Package resource provides API resource transformers that decide the JSON
// shape of a model:
//
//	type Product struct{ resource.Base }
//	func (Product) ToArray(v any) resource.Map {
//	    p := v.(models.Product)
//	    return resource.Map{"id": p.ID, "name": p.Name}
//	}
//
// Respond:
//
//	resource.New(resources.Product{}, p).WithMessage("Product created successfully").Status(201).Respond(w)
//	resource.CollectionOf(resources.Product{}, page.Items).WithPagination(page.Pagination).Respond(w)
package resource

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/ultranet/catalog/pkg/orm"
)

// Map is the output of ToArray.
type Map = map[string]any

// Transformer turns one model into its public representation.
type Transformer interface {
	ToArray(v any) Map
}

// Base can be embedded in any Resource to satisfy future extension points.
type Base struct{}

// ─── Single resource ─────────────────────────────────────────────────────────

// Resource wraps a single model with its transformer.
type Resource struct {
	transformer Transformer
	data        any
	message     string
	status      int
}

// New creates a Resource for a single model instance.
func New(t Transformer, data any) *Resource {
	return &Resource{transformer: t, data: data, status: http.StatusOK}
}

// WithMessage adds a top-level "message" next to "data".
func (r *Resource) WithMessage(msg string) *Resource {
	r.message = msg
	return r
}

// Status overrides the default 200.
func (r *Resource) Status(code int) *Resource {
	r.status = code
	return r
}

// MarshalJSON lets a Resource be nested inside other payloads.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.transformer.ToArray(deref(r.data)))
}

// Envelope is the body Respond writes.
func (r *Resource) Envelope() Map {
	out := Map{"data": r.transformer.ToArray(deref(r.data))}
	if r.message != "" {
		out["message"] = r.message
	}
	return out
}

// Respond writes the envelope as JSON.
func (r *Resource) Respond(w http.ResponseWriter) {
	writeJSON(w, r.status, r.Envelope())
}

// ─── Collection resource ─────────────────────────────────────────────────────

// Collection wraps a slice of models with a transformer.
type Collection struct {
	transformer Transformer
	items       any
	pagination  *orm.Pagination
}

// CollectionOf creates a Collection from a slice or array of models
// (values or pointers).
func CollectionOf(t Transformer, items any) *Collection {
	return &Collection{transformer: t, items: items}
}

// WithPagination reports page details under "meta".
func (c *Collection) WithPagination(p orm.Pagination) *Collection {
	c.pagination = &p
	return c
}

// Items transforms every element in order. A nil or empty slice gives an
// empty, non-nil list so it encodes as [].
func (c *Collection) Items() []Map {
	v := reflect.ValueOf(c.items)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return []Map{}
	}

	out := make([]Map, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		out = append(out, c.transformer.ToArray(deref(v.Index(i).Interface())))
	}
	return out
}

// Envelope is the body Respond writes.
func (c *Collection) Envelope() Map {
	out := Map{"data": c.Items()}
	if c.pagination != nil {
		out["meta"] = Map{
			"current_page": c.pagination.CurrentPage,
			"last_page":    c.pagination.LastPage,
			"per_page":     c.pagination.PerPage,
			"total":        c.pagination.Total,
		}
	}
	return out
}

// Respond writes the collection as JSON with status 200.
func (c *Collection) Respond(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, c.Envelope())
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// deref hands transformers a value even when callers pass pointers.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
