package app

// commands.go holds the implementations behind the CLI sub-commands. Each
// writes its report to out so it can be tested without a terminal.

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/ultranet/catalog/app/exports"
	"github.com/ultranet/catalog/app/services"
	"github.com/ultranet/catalog/database/seeders"
	"github.com/ultranet/catalog/internal/kernel"
	"github.com/ultranet/catalog/pkg/migration"
	"github.com/ultranet/catalog/pkg/storage"
)

// Migrate runs all pending migrations.
func Migrate(ctx context.Context, db *gorm.DB, out io.Writer) error {
	_, err := migration.New(db, out).Run(ctx)
	return err
}

// Rollback reverses the last migration batch.
func Rollback(ctx context.Context, db *gorm.DB, out io.Writer) error {
	_, err := migration.New(db, out).Rollback(ctx)
	return err
}

// MigrationStatus prints every migration and whether it ran.
func MigrationStatus(db *gorm.DB, out io.Writer) error {
	return migration.New(db, out).PrintStatus()
}

// Seed runs all registered seeders.
func Seed(ctx context.Context, db *gorm.DB, out io.Writer) error {
	n, err := seeders.RunAll(ctx, db, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeding complete (%d seeders ran)\n", n)
	return nil
}

// CreateUser creates or updates an admin user.
func CreateUser(ctx context.Context, s *services.Services, out io.Writer, name, email, password string) error {
	u, err := s.Auth.CreateUser(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "User %s saved (id %d)\n", u.Email, u.ID)
	return nil
}

// Export writes the product workbook to the named storage disk under dir.
func Export(ctx context.Context, s *services.Services, out io.Writer, diskName, dir string) error {
	disk, err := storage.Use(diskName)
	if err != nil {
		return err
	}
	products, err := s.Products.All(ctx)
	if err != nil {
		return err
	}
	p, err := exports.Store(ctx, disk, dir, time.Now(), products)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d product(s) to %s:%s\n", len(products), disk.Name(), p)
	if u := disk.URL(p); u != "" {
		fmt.Fprintln(out, u)
	}
	return nil
}

// RouteList prints every registered route. No connection is needed.
func RouteList(out io.Writer) error {
	k, err := kernel.NewHTTPKernel(kernel.Options{})
	if err != nil {
		return err
	}

	infos := k.Router().Routes()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
