package main

import (
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations to the best time database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := cfg.Postgres.URL()
		if err != nil {
			return err
		}
		version, err := database.Migrate(url)
		if err != nil {
			return err
		}
		log.WithField("version", version).Info("migration successful")
		return nil
	},
}
