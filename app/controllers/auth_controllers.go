// Package controllers holds the JSON API handlers. Every failure goes through
// ctx.Fail so the envelope and status code come from the AppError.
package controllers

import (
	"net/http"

	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login exchanges email and password for a bearer token.
func (a *AuthController) Login(c *ctx.Context) {
	var in requests.Credentials
	if err := c.Bind(&in); err != nil {
		c.Fail(err)
		return
	}

	user, err := a.service.Attempt(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}

	token, err := a.service.IssueToken(user)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, token)
}
