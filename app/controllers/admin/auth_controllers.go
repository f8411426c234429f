package admin

import (
	"net/http"

	"github.com/ultranet/catalog/app/requests"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/app/views"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/logger"
	"github.com/ultranet/catalog/pkg/middleware"
)

// HomePath is where a successful login lands.
const HomePath = "/admin/products"

// LoginPath is the login form.
const LoginPath = "/login"

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (a *AuthController) ShowLogin(c *ctx.Context) {
	render(c, http.StatusOK, "auth/login", &views.Page{Title: "Login"})
}

// Login checks the credentials and starts an authenticated session under a
// fresh id.
func (a *AuthController) Login(c *ctx.Context) {
	var in requests.Credentials
	if err := c.Bind(&in); err != nil {
		fail(c, err, LoginPath, map[string]any{"email": in.Email})
		return
	}

	user, err := a.service.Attempt(c.Context(), in)
	if err != nil {
		fail(c, err, LoginPath, map[string]any{"email": in.Email})
		return
	}

	sess := c.Session()
	if err := sess.Regenerate(); err != nil {
		fail(c, err, LoginPath, nil)
		return
	}
	sess.Set(middleware.SessionUserKey, user.ID)
	sess.Set(SessionUserName, user.Name)

	logger.WithCtx(c.Context()).Info("admin login", "user_id", user.ID)
	c.Redirect(http.StatusSeeOther, HomePath)
}

func (a *AuthController) Logout(c *ctx.Context) {
	if err := c.Session().Invalidate(); err != nil {
		fail(c, err, HomePath, nil)
		return
	}
	c.Redirect(http.StatusSeeOther, LoginPath)
}
