package middleware

import (
	"net/http"
	"strings"

	"github.com/ultranet/catalog/pkg/auth"
	"github.com/ultranet/catalog/pkg/logger"
	"github.com/ultranet/catalog/pkg/response"
	"github.com/ultranet/catalog/pkg/session"
)

// SessionUserKey is the session key holding the signed-in admin's id.
const SessionUserKey = "user_id"

// Authenticate guards the JSON API with a bearer JWT. The user id from the
// token is placed on the request context (auth.UserID).
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.WithCtx(r.Context()).Debug("rejected bearer token", "error", err)
			response.Unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), claims.UserID)))
	})
}

// SessionAuth guards the admin pages. Visitors without a signed-in session
// are redirected to loginPath. Must run after session.Middleware.
func SessionAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := session.FromCtx(r).GetUint(SessionUserKey)
			if !ok || userID == 0 {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// Guest sends already signed-in visitors to home (used on the login page).
func Guest(home string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := session.FromCtx(r).GetUint(SessionUserKey); ok && userID != 0 {
				http.Redirect(w, r, home, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
