// Package kernel assembles the catalog's HTTP handler: the global middleware
// stack, the operational endpoints and the API and admin routes.
package kernel

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hellofresh/health-go/v5"
	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/controllers/admin"
	appgraphql "github.com/ultranet/catalog/app/graphql"
	"github.com/ultranet/catalog/app/routes"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/ctx"
	"github.com/ultranet/catalog/pkg/database"
	"github.com/ultranet/catalog/pkg/metrics"
	"github.com/ultranet/catalog/pkg/middleware"
	"github.com/ultranet/catalog/pkg/reqid"
	"github.com/ultranet/catalog/pkg/router"
	"github.com/ultranet/catalog/pkg/session"
	"github.com/ultranet/catalog/pkg/ws"
)

// Options carries what the kernel routes to.
type Options struct {
	DB       *gorm.DB
	Services *services.Services
	Hub      *ws.Hub
	// RateLimitPerMinute overrides RATE_LIMIT_PER_MINUTE when non-zero.
	// Negative disables the limiter.
	RateLimitPerMinute int
}

// HTTPKernel owns the router and the shared rate limiter.
type HTTPKernel struct {
	router  *router.Router
	limiter *middleware.RateLimiter
}

// NewHTTPKernel builds the router. Services default to ones built over
// opts.DB and the hub to a fresh, unstarted one.
func NewHTTPKernel(opts Options) (*HTTPKernel, error) {
	if opts.Services == nil {
		opts.Services = services.New(opts.DB, nil)
	}
	if opts.Hub == nil {
		opts.Hub = ws.NewHub()
	}

	perMinute := opts.RateLimitPerMinute
	switch {
	case perMinute == 0:
		perMinute = config.RateLimitPerMinute()
	case perMinute < 0:
		perMinute = 0
	}
	k := &HTTPKernel{
		router:  router.New(),
		limiter: middleware.NewRateLimiter(perMinute),
	}
	r := k.router

	// Global middleware, outermost first. Logger reads the request id, so
	// reqid runs before it; MethodOverride must precede routing.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(session.Middleware(session.DefaultOptions()))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.MethodOverride)
	r.Use(k.limiter.Handler)

	h, err := healthChecks(opts.DB)
	if err != nil {
		return nil, err
	}
	r.Handle(http.MethodGet, "/health", "health", h.Handler())
	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())

	schema, err := appgraphql.NewSchema(opts.Services.Products, opts.Services.Categories)
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	r.Get("/", "home", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, admin.HomePath, http.StatusFound)
	})
	routes.RegisterAPI(r, opts.Services, schema)
	routes.RegisterAdmin(r, opts.Services, opts.Hub)

	r.NotFound(ctx.Wrap(func(c *ctx.Context) {
		if strings.HasPrefix(c.Path(), "/api/") || c.WantsJSON() {
			c.Error(http.StatusNotFound, "Not Found")
			return
		}
		admin.NotFound(c)
	}))

	return k, nil
}

func healthChecks(db *gorm.DB) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    config.AppName(),
			Version: "1.0.0",
		}),
		health.WithChecks(
			health.Config{
				Name:    "database",
				Timeout: 3 * time.Second,
				Check: func(c context.Context) error {
					return database.Ping(c, db)
				},
			},
			health.Config{
				Name:      "cache",
				Timeout:   2 * time.Second,
				SkipOnErr: true,
				Check: func(c context.Context) error {
					return cache.Default().Ping(c)
				},
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("kernel: health checks: %w", err)
	}
	return h, nil
}

// Handler is the root http.Handler.
func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the named routes (route:list).
func (k *HTTPKernel) Router() *router.Router { return k.router }

// Limiter is the shared rate limiter, swept by the server.
func (k *HTTPKernel) Limiter() *middleware.RateLimiter { return k.limiter }
