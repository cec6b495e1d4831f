package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mselser95/finsight/internal/app"
	"github.com/mselser95/finsight/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long:  `Applies or rolls back the embedded schema migrations against the database configured by POSTGRES_* variables.`,
}

//nolint:gochecknoglobals // Cobra boilerplate
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB, logger *zap.Logger) error {
			return storage.MigrateUp(db, logger)
		})
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		return withDB(cmd, func(db *sql.DB, logger *zap.Logger) error {
			return storage.MigrateDown(db, steps, logger)
		})
	},
}

//nolint:gochecknoglobals // Cobra boilerplate
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB, logger *zap.Logger) error {
			status, err := storage.Status(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty:   %v\n", status.Version, status.Dirty)
			return nil
		})
	},
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateDownCmd.Flags().IntP("steps", "n", 1, "Number of migrations to roll back")
}

func withDB(cmd *cobra.Command, fn func(db *sql.DB, logger *zap.Logger) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	db, err := app.OpenDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db.DB, logger)
}
