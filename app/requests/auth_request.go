package requests

import (
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/validate"
)

// Credentials is a login form or API login body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,string"`
}

// CheckStruct runs the `validate` tags of v and converts failures to a 422
// AppError.
func CheckStruct(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return apperr.Validation(validate.Summarize(errs, nil), errs)
	}
	return nil
}
