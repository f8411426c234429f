package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/pkg/cache"
)

type category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestRedisStoreGet(t *testing.T) {
	ctx := context.Background()
	want := []category{{ID: 1, Name: "Books"}}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("categories:all").SetVal(string(raw))

		var got []category
		ok, err := cache.NewRedisStore(client).Get(ctx, "categories:all", &got)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet("categories:all").SetErr(redis.Nil)

		var got []category
		ok, err := cache.NewRedisStore(client).Get(ctx, "categories:all", &got)

		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		boom := errors.New("connection refused")
		mock.ExpectGet("categories:all").SetErr(boom)

		var got []category
		ok, err := cache.NewRedisStore(client).Get(ctx, "categories:all", &got)

		assert.False(t, ok)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRedisStoreSetAndDelete(t *testing.T) {
	ctx := context.Background()
	value := category{ID: 2, Name: "Toys & Games"}
	raw, err := json.Marshal(value)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectSet("category:2", raw, time.Hour).SetVal("OK")
	mock.ExpectDel("category:2", "categories:all").SetVal(2)

	s := cache.NewRedisStore(client)
	require.NoError(t, s.Set(ctx, "category:2", value, time.Hour))
	require.NoError(t, s.Delete(ctx, "category:2", "categories:all"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	require.NoError(t, s.Set(ctx, "short", "v", time.Millisecond))
	require.NoError(t, s.Set(ctx, "forever", "v", 0))

	time.Sleep(5 * time.Millisecond)

	var v string
	ok, err := s.Get(ctx, "short", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Get(ctx, "forever", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRememberLoadsOnce(t *testing.T) {
	ctx := context.Background()
	cache.Use(cache.NewMemoryStore())

	calls := 0
	load := func() (any, error) {
		calls++
		return []category{{ID: 1, Name: "Books"}}, nil
	}

	for i := 0; i < 3; i++ {
		var got []category
		require.NoError(t, cache.Remember(ctx, "categories:all", time.Minute, &got, load))
		assert.Equal(t, "Books", got[0].Name)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, cache.Forget(ctx, "categories:all"))
	var got []category
	require.NoError(t, cache.Remember(ctx, "categories:all", time.Minute, &got, load))
	assert.Equal(t, 2, calls)
}
