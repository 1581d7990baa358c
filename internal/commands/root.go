// Package commands implements timesheetctl, the operator CLI that reads and
// updates the same SQLite database as the server.
package commands

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"timesheet/backend/internal/config"
	"timesheet/backend/internal/db"
)

type app struct {
	cfg      config.Config
	database *sql.DB
	now      func() time.Time
}

func NewRootCmd() *cobra.Command {
	a := &app{now: func() time.Time { return time.Now().UTC() }}

	root := &cobra.Command{
		Use:   "timesheetctl",
		Short: "Inspect and administer the timesheet database",
		Long: `timesheetctl works directly on the timesheet SQLite database.
Configuration is read the same way as the server (CONFIG_PATH or env).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	root.AddCommand(newWeekCmd(a))
	root.AddCommand(newPromoteCmd(a))
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(cmd.Context(), database, cfg.MigrationsDir); err != nil {
		_ = database.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	a.database = database
	return nil
}

// withDB closes the database once fn returns, whether or not it failed.
// Cobra skips post-run hooks after an error.
func (a *app) withDB(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := a.close(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) close() error {
	if a.database == nil {
		return nil
	}
	err := a.database.Close()
	a.database = nil
	return err
}
