package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMiddlewareAndURL(t *testing.T) {
	r := router.New()
	var trail []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, req)
			})
		}
	}

	admin := r.Group("/admin", tag("session"))
	products := admin.Group("products", tag("auth"))
	products.Get("/{id}", "admin.products.show", ok)
	products.Put("/{id}", "admin.products.update", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/products/3", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"session", "auth"}, trail)

	url, err := r.URL("admin.products.show", map[string]string{"id": "3"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/products/3", url)

	_, err = r.URL("admin.products.show", nil)
	assert.Error(t, err)
	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesListsNamesPerMethod(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	api.Get("/products/{id}", "api.products.show", ok)
	api.Delete("/products/{id}", "api.products.destroy", ok)
	r.Handle(http.MethodGet, "/metrics", "metrics", http.HandlerFunc(ok))

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, router.Route{Method: "DELETE", Path: "/api/products/{id}", Name: "api.products.destroy"}, routes[0])
	assert.Equal(t, router.Route{Method: "GET", Path: "/api/products/{id}", Name: "api.products.show"}, routes[1])
	assert.Equal(t, "/metrics", routes[2].Path)
}
