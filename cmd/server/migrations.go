package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/styleforge/styleforge-api/internal/config"
)

const migrationsDir = "migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Fatalf does not exit; the error is returned to main which handles the
// exit consistently.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// runMigrations executes the given goose command (up, down, status)
// against the configured database.
func runMigrations(cfg *config.Config, command string) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("migrations require a database URL")
	}

	goose.SetLogger(&slogGooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	db, err := setupAppDatabase(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Error closing database after migrations", "error", closeErr)
		}
	}()

	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}

	slog.Info("Running migrations", "command", command, "dir", dir)

	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %q failed: %w", command, err)
	}
	return nil
}

// findMigrationsDir locates the migrations directory relative to the
// working directory, walking up to the module root if needed.
func findMigrationsDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	dir := cwd
	for i := 0; i < 10; i++ {
		candidate := filepath.Join(dir, migrationsDir)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not locate migrations directory")
}
