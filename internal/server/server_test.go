package server_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/internal/server"
	"github.com/ultranet/catalog/pkg/middleware"
	"github.com/ultranet/catalog/pkg/ws"
)

func TestRunServesUntilCancelled(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, server.Config{
			Listener:        lis,
			Handler:         handler,
			Hub:             ws.NewHub(),
			Limiter:         middleware.NewRateLimiter(0),
			ShutdownTimeout: time.Second,
		})
	}()

	resp, err := http.Get("http://" + lis.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get("http://" + lis.Addr().String() + "/")
	assert.Error(t, err)
}

func TestRunFailsOnBadAddress(t *testing.T) {
	err := server.Run(context.Background(), server.Config{Addr: "256.0.0.1:bad", Handler: http.NotFoundHandler()})
	assert.Error(t, err)
}
