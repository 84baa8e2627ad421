package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/certprep/backend/internal/achievements"
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/database"
	"github.com/certprep/backend/internal/progress"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "certprep",
	Short:         "Exam practice progress and achievements backend",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlagOverrides(cmd); err != nil {
			return err
		}
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		config.InitLogger(c.LogLevel, c.LogFormat)
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "Storage backend: postgres or sqlite (overrides STORAGE_BACKEND)")
	rootCmd.PersistentFlags().String("sqlite-path", "", "Path to the SQLite file (overrides SQLITE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(backfillCmd)
}

// flagEnv maps flags to the environment variable they override.
var flagEnv = map[string]string{
	"backend":     "STORAGE_BACKEND",
	"sqlite-path": "SQLITE_PATH",
	"log-level":   "LOG_LEVEL",
	"port":        "PORT",
}

func applyFlagOverrides(cmd *cobra.Command) error {
	for name, env := range flagEnv {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := os.Setenv(env, f.Value.String()); err != nil {
			return fmt.Errorf("apply --%s: %w", name, err)
		}
	}
	return nil
}

// storage is the persistence wiring for one backend.
type storage struct {
	backend progress.Backend
	repo    achievements.Repository
	pg      *sql.DB
	users   func(ctx context.Context) ([]int64, error)
	close   func()
}

func openStorage(c *config.Config) (*storage, error) {
	switch c.StorageBackend {
	case config.BackendPostgres:
		db, err := database.Connect(c.PostgresDSN())
		if err != nil {
			return nil, err
		}
		remote := progress.NewRemoteBackend(db)
		return &storage{
			backend: remote,
			repo:    achievements.NewPGRepository(db),
			pg:      db,
			users:   remote.UserIDs,
			close:   func() { db.Close() },
		}, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		kv := progress.NewSQLiteKV(db, c.LocalQuotaBytes)
		return &storage{
			backend: progress.NewLocalBackend(kv),
			repo:    achievements.NewKVRepository(kv),
			users: func(context.Context) ([]int64, error) {
				return []int64{c.LocalUserID}, nil
			},
			close: func() { closeSQLite(db) },
		}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}

func closeSQLite(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logrus.WithError(err).Warn("Close SQLite database failed")
	}
}
