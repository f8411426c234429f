package main

import (
	"github.com/spf13/cobra"

	"github.com/ultranet/catalog/internal/app"
)

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		cmd.Println("Running migrations…")
		return app.Migrate(cmd.Context(), db, cmd.OutOrStdout())
	},
}

// catalog migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		cmd.Println("Rolling back last batch…")
		return app.Rollback(cmd.Context(), db, cmd.OutOrStdout())
	},
}

// catalog migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		return app.MigrationStatus(db, cmd.OutOrStdout())
	},
}

// catalog seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admin user, categories and sample products",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := app.BootDB()
		if err != nil {
			return err
		}
		cmd.Println("Running seeders…")
		return app.Seed(cmd.Context(), db, cmd.OutOrStdout())
	},
}
