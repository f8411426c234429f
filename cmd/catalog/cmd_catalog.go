package main

import (
	"github.com/spf13/cobra"

	"github.com/ultranet/catalog/internal/app"
)

var userFlags struct {
	name, email, password string
}

// catalog user:create --name --email --password
var userCreateCmd = &cobra.Command{
	Use:   "user:create",
	Short: "Create or update an admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot()
		if err != nil {
			return err
		}
		defer a.Close()
		return app.CreateUser(cmd.Context(), a.Services, cmd.OutOrStdout(), userFlags.name, userFlags.email, userFlags.password)
	},
}

var exportFlags struct {
	disk, path string
}

// catalog export --disk local|s3 [--path exports]
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the products spreadsheet to a storage disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot()
		if err != nil {
			return err
		}
		defer a.Close()
		return app.Export(cmd.Context(), a.Services, cmd.OutOrStdout(), exportFlags.disk, exportFlags.path)
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userFlags.name, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userFlags.email, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userFlags.password, "password", "", "plain-text password")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	exportCmd.Flags().StringVar(&exportFlags.disk, "disk", "", "storage disk (local or s3); defaults to STORAGE_DISK")
	exportCmd.Flags().StringVar(&exportFlags.path, "path", "exports", "directory on the disk")
}
