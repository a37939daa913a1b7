package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/inamate/inamate/whiteboard/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := store.NewPool(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := store.Migrate(cmd.Context(), pool); err != nil {
		return err
	}
	slog.Info("schema up to date")
	return nil
}
