package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/response"
)

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes through a
// hidden "_method" field. Only POST requests are rewritten. It must be
// registered on the root router, before routing happens.
//
// Reading the field parses the form, so the body is capped at MAX_BODY_BYTES
// here rather than in the handler.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodyBytes())
			}
			method := r.Header.Get("X-HTTP-Method-Override")
			if method == "" && isForm(r) {
				if err := parseForm(r); err != nil {
					rejectBody(w, err)
					return
				}
				method = r.PostForm.Get("_method")
			}
			switch m := strings.ToUpper(method); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(config.MaxBodyBytes())
	}
	return r.ParseForm()
}

func rejectBody(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body too large (max %d bytes).", maxErr.Limit))
		return
	}
	response.Error(w, http.StatusBadRequest, "Malformed request body.")
}
