// Package session provides cookie-identified server-side sessions stored in
// the cache (Redis or memory).
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("user_id", user.ID)
//	sess.Flash("success", "Product created successfully.")
//
// A changed session is persisted automatically just before the response
// headers are written, so redirects carry it.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/logger"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions reads the TTL from config and secures the cookie in
// production.
func DefaultOptions() Options {
	return Options{
		CookieName: "catalog_session",
		TTL:        config.SessionTTL(),
		HTTPOnly:   true,
		Secure:     config.IsProduction(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

const flashPrefix = "_flash_"

// Session is an in-request session handle.
type Session struct {
	mu      sync.Mutex
	id      string
	oldID   string
	data    map[string]any
	opts    Options
	changed bool
}

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func storeKey(id string) string { return "catalog:session:" + id }

func load(ctx context.Context, id string) map[string]any {
	var data map[string]any
	if cache.Get(ctx, storeKey(id), &data) && data != nil {
		return data
	}
	return map[string]any{}
}

// Set stores a value under key in the session.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.changed = true
}

// Get retrieves a value from the session.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString is a typed convenience getter.
func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetUint returns a stored id. Values that went through JSON come back as
// float64.
func (s *Session) GetUint(key string) (uint, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

// Delete removes a key from the session.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	s.changed = true
}

// Flash stores a value that is removed when it is next read.
func (s *Session) Flash(key string, value any) {
	s.Set(flashPrefix+key, value)
}

// GetFlash retrieves and removes a flash value.
func (s *Session) GetFlash(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[flashPrefix+key]
	if ok {
		delete(s.data, flashPrefix+key)
		s.changed = true
	}
	return v, ok
}

// GetFlashString is GetFlash for string values.
func (s *Session) GetFlashString(key string) string {
	v, _ := s.GetFlash(key)
	str, _ := v.(string)
	return str
}

// GetFlashInto decodes a structured flash value (errors, old input) into dest.
func (s *Session) GetFlashInto(key string, dest any) bool {
	v, ok := s.GetFlash(key)
	if !ok {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Regenerate issues a new session id, keeping the data. Call it on login.
func (s *Session) Regenerate() error {
	id, err := newID()
	if err != nil {
		return fmt.Errorf("session: new id: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.oldID == "" {
		s.oldID = s.id
	}
	s.id = id
	s.changed = true
	return nil
}

// Invalidate clears the data and issues a new id (logout).
func (s *Session) Invalidate() error {
	s.mu.Lock()
	s.data = map[string]any{}
	s.mu.Unlock()
	return s.Regenerate()
}

// ID returns the session ID.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Save persists a changed session and writes the cookie. The middleware calls
// it automatically; handlers only need it when they bypass the wrapped writer.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.changed {
		return nil
	}

	if s.oldID != "" {
		if err := cache.Forget(ctx, storeKey(s.oldID)); err != nil {
			return fmt.Errorf("session: forget old: %w", err)
		}
		s.oldID = ""
	}

	if err := cache.Set(ctx, storeKey(s.id), s.data, s.opts.TTL); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    s.id,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})

	s.changed = false
	return nil
}

// ─── Middleware ───────────────────────────────────────────────────────────────

// saveWriter persists the session right before the status line goes out.
type saveWriter struct {
	http.ResponseWriter
	r     *http.Request
	sess  *Session
	wrote bool
}

func (w *saveWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		if err := w.sess.Save(w.r.Context(), w.ResponseWriter); err != nil {
			logger.WithCtx(w.r.Context()).Error("session: save failed", "error", err)
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *saveWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *saveWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware loads (or creates) the session for every request and injects it
// into the request context.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := &Session{opts: opts}

			if cookie, err := r.Cookie(opts.CookieName); err == nil && cookie.Value != "" {
				sess.id = cookie.Value
				sess.data = load(r.Context(), sess.id)
			} else {
				id, err := newID()
				if err != nil {
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				sess.id = id
				sess.data = map[string]any{}
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			sw := &saveWriter{ResponseWriter: w, r: r.WithContext(ctx), sess: sess}
			next.ServeHTTP(sw, sw.r)

			// Handlers that never wrote still get their session saved.
			if !sw.wrote {
				if err := sess.Save(ctx, w); err != nil {
					logger.WithCtx(ctx).Error("session: save failed", "error", err)
				}
			}
		})
	}
}

// FromCtx retrieves the session from the request context.
// Returns an empty, unsaved session if the middleware did not run.
func FromCtx(r *http.Request) *Session {
	if s, ok := r.Context().Value(ctxKey{}).(*Session); ok {
		return s
	}
	id, _ := newID()
	return &Session{id: id, data: map[string]any{}, opts: DefaultOptions()}
}
