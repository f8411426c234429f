package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/ultranet/catalog/pkg/apperr"
)

func TestFromMapsKnownErrors(t *testing.T) {
	assert.Nil(t, apperr.From(nil))

	notFound := apperr.From(fmt.Errorf("repo: find: %w", gorm.ErrRecordNotFound))
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
	assert.True(t, errors.Is(notFound, gorm.ErrRecordNotFound))

	internal := apperr.From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.StatusCode)
	assert.Equal(t, "Server Error", internal.Message)
}

func TestFromKeepsWrappedAppError(t *testing.T) {
	base := apperr.NotFound("Product not found")
	wrapped := fmt.Errorf("service: %w", base)

	got := apperr.From(wrapped)
	assert.Same(t, base, got)
	assert.True(t, apperr.IsNotFound(wrapped))
}

func TestValidationCarriesFields(t *testing.T) {
	err := apperr.FieldError("name", "Product name is required")

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, apperr.CodeValidation, err.Code)
	assert.Equal(t, []string{"Product name is required"}, err.Fields["name"])
}
