// Package app boots the catalog: configuration, logging sinks, the
// database, cache and storage connections, and the services, event
// listeners and websocket hub built on top of them. Every CLI command starts
// here.
package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/listeners"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/config"
	"github.com/ultranet/catalog/internal/kernel"
	"github.com/ultranet/catalog/internal/server"
	"github.com/ultranet/catalog/pkg/cache"
	"github.com/ultranet/catalog/pkg/database"
	"github.com/ultranet/catalog/pkg/event"
	"github.com/ultranet/catalog/pkg/logger"
	"github.com/ultranet/catalog/pkg/storage"
	"github.com/ultranet/catalog/pkg/ws"
)

// Application holds the booted dependencies.
type Application struct {
	DB       *gorm.DB
	Services *services.Services
	Events   *event.Dispatcher
	Hub      *ws.Hub

	closers []func()
}

// BootDB loads config and connects to the database only. Migrations and
// route listing need nothing else.
func BootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	return database.DB, nil
}

// Boot connects everything. A Redis or MongoDB outage degrades to the
// memory cache and stdout logging with a warning.
func Boot() (*Application, error) {
	a := &Application{}

	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if uri := config.LogMongoURI(); uri != "" {
		closeLogs, err := logger.EnableMongo(uri, config.LogMongoDB())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		}
		a.closers = append(a.closers, closeLogs)
	}

	db, err := BootDB()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := cache.Connect(); err != nil {
		logger.Warn("falling back to memory cache", "error", err)
	}
	if err := storage.Connect(); err != nil {
		a.Close()
		return nil, err
	}

	a.Events = event.New()
	a.Hub = ws.NewHub()
	listeners.Register(a.Events, a.Hub)
	a.Services = services.New(db, a.Events)
	return a, nil
}

// Close releases connections in reverse order.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Kernel builds the HTTP kernel over the booted services.
func (a *Application) Kernel() (*kernel.HTTPKernel, error) {
	return kernel.NewHTTPKernel(kernel.Options{
		DB:       a.DB,
		Services: a.Services,
		Hub:      a.Hub,
	})
}

// Serve runs HTTP and gRPC until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	k, err := a.Kernel()
	if err != nil {
		return err
	}
	return server.Run(ctx, server.Config{
		Addr:     ":" + config.AppPort(),
		Handler:  k.Handler(),
		GRPCPort: config.GRPCPort(),
		Check: func(c context.Context) error {
			return database.Ping(c, a.DB)
		},
		Hub:     a.Hub,
		Limiter: k.Limiter(),
	})
}
