// Package admin holds the session-authenticated HTML handlers. Writes end in
// a 303 redirect carrying a flash message; validation failures flash the
// errors and the submitted input back to the form.
package admin

import (
	"net/http"

	"github.com/ultranet/catalog/app/views"
	"github.com/ultranet/catalog/pkg/apperr"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/logger"
)

// Flash keys.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashErrors  = "errors"
	flashOld     = "old"
)

// SessionUserName holds the signed-in user's display name.
const SessionUserName = "user_name"

// render fills the page with the session's flashes and writes it.
func render(c *ctx.Context, status int, name string, page *views.Page) {
	sess := c.Session()
	page.Success = sess.GetFlashString(flashSuccess)
	page.Failure = sess.GetFlashString(flashError)
	sess.GetFlashInto(flashErrors, &page.Errors)
	sess.GetFlashInto(flashOld, &page.OldInput)
	if name, ok := sess.GetString(SessionUserName); ok {
		page.User = name
		page.ShowNavbar = true
	}

	body, err := views.Render(name, page)
	if err != nil {
		logger.WithCtx(c.Context()).Error("admin: render failed", "page", name, "error", err)
		c.String(http.StatusInternalServerError, "Server Error")
		return
	}
	c.HTML(status, body)
}

// NotFound renders the 404 page.
func NotFound(c *ctx.Context) {
	render(c, http.StatusNotFound, "errors/404", &views.Page{Title: "Not Found"})
}

// redirect flashes msg under success and sends a 303 to url.
func redirect(c *ctx.Context, url, msg string) {
	if msg != "" {
		c.Session().Flash(flashSuccess, msg)
	}
	c.Redirect(http.StatusSeeOther, url)
}

// fail maps err onto the admin surface: validation errors go back to the
// form with the input, conflicts go back with a flash, a missing record is
// the 404 page and anything else the 500 page.
func fail(c *ctx.Context, err error, back string, input map[string]any) {
	appErr := apperr.From(err)

	switch {
	case len(appErr.Fields) > 0:
		sess := c.Session()
		sess.Flash(flashErrors, appErr.Fields)
		sess.Flash(flashOld, oldInput(input))
		c.Back(back)
	case appErr.StatusCode == http.StatusNotFound:
		render(c, http.StatusNotFound, "errors/404", &views.Page{Title: "Not Found", Data: appErr.Message})
	case appErr.StatusCode < http.StatusInternalServerError:
		c.Session().Flash(flashError, appErr.Message)
		c.Back(back)
	default:
		logger.WithCtx(c.Context()).Error("admin: request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		render(c, http.StatusInternalServerError, "errors/500", &views.Page{Title: "Server Error"})
	}
}

// oldInput is the submitted input minus anything secret.
func oldInput(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	return out
}
