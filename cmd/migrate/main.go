package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"timesheet/backend/internal/config"
	"timesheet/backend/internal/db"
	"timesheet/backend/internal/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(context.Background(), database, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("migrations applied successfully")
	return nil
}
