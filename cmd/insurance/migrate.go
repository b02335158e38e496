package main

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/go-insurance/internal/database"
	"github.com/spf13/cobra"
)

const migrateTimeout = 2 * time.Minute

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, loggerService := bootstrap()
		defer loggerService.Shutdown()

		ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
		defer cancel()

		if err := database.Migrate(ctx, log, cfg); err != nil {
			log.Error().Err(err).Msg("failed to migrate database")
			return err
		}
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied and latest migration versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, loggerService := bootstrap()
		defer loggerService.Shutdown()

		ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
		defer cancel()

		status, err := database.Status(ctx, cfg)
		if err != nil {
			return err
		}

		state := "pending migrations"
		if status.UpToDate() {
			state = "up to date"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d of %d (%s)\n", status.Current, status.Latest, state)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
