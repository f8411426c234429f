package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ultranet/catalog/pkg/logger"
)

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	var buf bytes.Buffer
	tagged := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")
	ctx := logger.InjectLogger(context.Background(), tagged)

	logger.WithCtx(ctx).Info("product created", "product_id", 7)
	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "product_id=7")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := logger.NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("request_id", "r1")

	log.Info("listed products")
	log.Warn("slow query", "ms", 900)

	assert.Contains(t, a.String(), "listed products")
	assert.Contains(t, a.String(), "slow query")
	assert.NotContains(t, b.String(), "listed products")
	assert.Contains(t, b.String(), `"request_id":"r1"`)
	assert.Contains(t, b.String(), `"msg":"slow query"`)
}
