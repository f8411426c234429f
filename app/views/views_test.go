package views_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/app/models"
	"github.com/ultranet/catalog/app/views"
)

func TestPageHelpers(t *testing.T) {
	p := &views.Page{
		Errors:   map[string][]string{"name": {"Product name is required", "second"}},
		OldInput: map[string]any{"price": "abc", "description": nil},
	}

	assert.Equal(t, "Product name is required", p.Error("name"))
	assert.True(t, p.HasError("name"))
	assert.False(t, p.HasError("price"))

	assert.Equal(t, "abc", p.Old("price", "1.00"))
	assert.Equal(t, "", p.Old("description", "kept"))
	assert.Equal(t, "3", p.Old("stock", 3))
	assert.Equal(t, "", (&views.Page{}).Old("name", nil))
}

func TestRenderLoginWithFlashes(t *testing.T) {
	body, err := views.Render("auth/login", &views.Page{
		Title:    "Login",
		Failure:  "Session expired <again>",
		Errors:   map[string][]string{"email": {"These credentials do not match our records."}},
		OldInput: map[string]any{"email": "admin@example.com"},
	})
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "<title>Login |")
	assert.Contains(t, html, "Session expired &lt;again&gt;")
	assert.Contains(t, html, "is-invalid")
	assert.Contains(t, html, `value="admin@example.com"`)
	assert.NotContains(t, html, "navbar", "guests get no navbar")
}

func TestRenderProductShow(t *testing.T) {
	desc := "Warm white"
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	body, err := views.Render("products/show", &views.Page{
		Title:      "Lamp",
		User:       "Admin User",
		ShowNavbar: true,
		Data: models.Product{
			ID: 4, Name: "Lamp", Description: &desc, Price: decimal.RequireFromString("19.9"),
			Stock: 2, Enabled: false, CreatedAt: at, UpdatedAt: at,
			Category: models.Category{Name: "Home & Garden"},
		},
	})
	require.NoError(t, err)

	html := string(body)
	assert.Contains(t, html, "Admin User")
	assert.Contains(t, html, "Home &amp; Garden")
	assert.Contains(t, html, "19.90")
	assert.Contains(t, html, "Disabled")
	assert.Contains(t, html, "2024-03-05 14:07:09")
	assert.Contains(t, html, "/admin/products/4/edit")
}

func TestRenderUnknownPage(t *testing.T) {
	_, err := views.Render("products/missing", &views.Page{})
	assert.Error(t, err)
}
