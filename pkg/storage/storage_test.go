package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultranet/catalog/pkg/storage"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "exports/products.xlsx", strings.NewReader("xlsx-bytes")))

	ok, err := disk.Exists(ctx, "exports/products.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Get(ctx, "exports/products.xlsx")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "xlsx-bytes", string(data))

	assert.Equal(t, "http://localhost:8080/storage/exports/products.xlsx", disk.URL("exports/products.xlsx"))

	require.NoError(t, disk.Delete(ctx, "exports/products.xlsx"))
	require.NoError(t, disk.Delete(ctx, "exports/products.xlsx"), "deleting twice is fine")

	_, err = disk.Get(ctx, "exports/products.xlsx")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)

	assert.Error(t, disk.Put(ctx, "../outside.txt", strings.NewReader("x")))
	assert.Error(t, disk.Put(ctx, "", strings.NewReader("x")))
}

func TestUseUnknownDisk(t *testing.T) {
	disk, err := storage.NewLocalDisk(t.TempDir(), "")
	require.NoError(t, err)
	storage.Register(disk)

	got, err := storage.Use("local")
	require.NoError(t, err)
	assert.Equal(t, "local", got.Name())

	_, err = storage.Use("ftp")
	assert.Error(t, err)
}
