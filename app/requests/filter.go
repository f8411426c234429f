package requests

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ultranet/catalog/app/repositories"
	"github.com/ultranet/catalog/pkg/apperr"
)

// ProductFilterFrom reads search, status, page and (when withCategory)
// category_id from a query string. Blank or unrecognised status and a bad page
// are ignored; a non-integer category_id is a 422.
func ProductFilterFrom(q url.Values, withCategory bool) (repositories.ProductFilter, error) {
	f := repositories.ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   1,
	}

	switch strings.ToLower(strings.TrimSpace(q.Get("status"))) {
	case "1", "true":
		enabled := true
		f.Status = &enabled
	case "0", "false":
		disabled := false
		f.Status = &disabled
	}

	if n, err := strconv.Atoi(strings.TrimSpace(q.Get("page"))); err == nil && n > 0 {
		f.Page = n
	}

	if withCategory {
		if raw := strings.TrimSpace(q.Get("category_id")); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return f, apperr.FieldError("category_id", "The category id field must be an integer.")
			}
			id := uint(n)
			f.CategoryID = &id
		}
	}
	return f, nil
}
