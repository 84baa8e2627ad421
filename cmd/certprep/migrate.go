package main

import (
	"fmt"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up|down|version]",
	Short: "Manage the Postgres schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageBackend != config.BackendPostgres {
			return fmt.Errorf("migrate needs STORAGE_BACKEND=%s; the SQLite schema is created on open", config.BackendPostgres)
		}

		db, err := database.Connect(cfg.PostgresDSN())
		if err != nil {
			return err
		}
		defer db.Close()

		action := "up"
		if len(args) == 1 {
			action = args[0]
		}

		switch action {
		case "up":
			if err := database.Migrate(db); err != nil {
				return err
			}
		case "down":
			steps, _ := cmd.Flags().GetInt("steps")
			if err := database.MigrateDown(db, steps); err != nil {
				return err
			}
		case "version":
		default:
			return fmt.Errorf("unknown migrate action %q", action)
		}

		v, dirty, err := database.Version(db)
		if err != nil {
			return err
		}
		logrus.WithField("version", v).WithField("dirty", dirty).Info("Schema version")
		return nil
	},
}

func init() {
	migrateCmd.Flags().Int("steps", 1, "Number of migrations to roll back with down")
}
