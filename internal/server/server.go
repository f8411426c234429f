// Package server runs the catalog's network listeners: HTTP, the gRPC health
// service and the background loops they depend on, until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	grpclib "google.golang.org/grpc"

	"github.com/ultranet/catalog/pkg/grpc"
	"github.com/ultranet/catalog/pkg/logger"
	"github.com/ultranet/catalog/pkg/middleware"
	"github.com/ultranet/catalog/pkg/ws"
)

// DefaultShutdownTimeout is how long in-flight HTTP requests get to finish.
const DefaultShutdownTimeout = 10 * time.Second

// Config describes one server run.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080". Ignored when Listener
	// is set.
	Addr     string
	Listener net.Listener
	Handler  http.Handler

	// GRPCPort enables the gRPC health service when non-empty.
	GRPCPort string
	Check    grpc.CheckFunc

	Hub     *ws.Hub
	Limiter *middleware.RateLimiter

	ShutdownTimeout time.Duration
}

// Run serves until ctx is cancelled (SIGINT/SIGTERM in the CLI) or a
// listener fails, then drains HTTP, stops gRPC gracefully and ends the hub.
func Run(ctx context.Context, cfg Config) error {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	loops, stopLoops := context.WithCancel(context.Background())
	defer stopLoops()
	if cfg.Hub != nil {
		go cfg.Hub.Run(loops)
	}
	if cfg.Limiter != nil {
		go cfg.Limiter.Run(loops, time.Minute)
	}

	lis := cfg.Listener
	if lis == nil {
		var err error
		lis, err = net.Listen("tcp", cfg.Addr)
		if err != nil {
			return fmt.Errorf("server: listen on %s: %w", cfg.Addr, err)
		}
	}

	var grpcSrv *grpclib.Server
	if cfg.GRPCPort != "" {
		var err error
		grpcSrv, err = grpc.Start(cfg.GRPCPort, cfg.Check)
		if err != nil {
			_ = lis.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:           cfg.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", lis.Addr().String())
		serveErr <- srv.Serve(lis)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server: serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown did not finish cleanly", "error", err)
	}
	grpc.Stop(grpcSrv)
	stopLoops()

	logger.Info("server stopped")
	return runErr
}
