// Package storage writes generated files (spreadsheet exports) to a named
// disk:
//   - "local": a directory on this machine (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2)
//
// Quick start:
//
//	if err := storage.Connect(); err != nil { ... }
//	disk, err := storage.Use("s3")
//	err = disk.Put(ctx, "exports/products_20240101_120000.xlsx", buf)
//	url := disk.URL("exports/products_20240101_120000.xlsx")
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when a path does not exist on a disk.
var ErrNotFound = errors.New("storage: file not found")

// Disk is the driver interface every disk implements.
type Disk interface {
	// Put writes r to p, replacing any existing file.
	Put(ctx context.Context, p string, r io.Reader) error

	// Get opens the file at p. Caller must close it.
	Get(ctx context.Context, p string) (io.ReadCloser, error)

	// Exists reports whether a file exists at p.
	Exists(ctx context.Context, p string) (bool, error)

	// Delete removes p. Deleting a missing file is not an error.
	Delete(ctx context.Context, p string) error

	// URL returns the public URL for p.
	URL(p string) string

	// Name is the disk's configured name.
	Name() string
}

// cleanPath normalises p to a slash-separated relative key and rejects paths
// that escape the disk root.
func cleanPath(p string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	switch {
	case p == "" || cleaned == ".":
		return "", fmt.Errorf("storage: empty path %q", p)
	case cleaned == ".." || strings.HasPrefix(cleaned, "../"):
		return "", fmt.Errorf("storage: path %q escapes the disk root", p)
	}
	return cleaned, nil
}
