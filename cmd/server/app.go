package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/styleforge/styleforge-api/internal/auth"
	"github.com/styleforge/styleforge-api/internal/catalog"
	"github.com/styleforge/styleforge-api/internal/config"
	"github.com/styleforge/styleforge-api/internal/generation"
	"github.com/styleforge/styleforge-api/internal/platform/gemini"
	"github.com/styleforge/styleforge-api/internal/platform/postgres"
	"github.com/styleforge/styleforge-api/internal/storage"
	"github.com/styleforge/styleforge-api/internal/store"
	"github.com/styleforge/styleforge-api/internal/task"
)

// application holds the shared dependencies so shutdown can release them
// in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	images       *storage.ImageStore
	taskStore    store.TaskStore
	taskMirror   store.TaskMirror
	catalog      catalog.Catalog
	generator    generation.Generator
	tokenService auth.TokenService
	pipeline     *task.Pipeline
}

// newApplication wires the application dependencies. The database mirror
// and generation provider are both optional; the pipeline degrades to
// memory-only persistence and simulated generation respectively.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.tokenService, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	if app.tokenService == nil {
		logger.Info("No auth secret configured, serving anonymous requests")
	}

	app.images, err = storage.NewImageStore(cfg.Storage.UploadsDir, cfg.Storage.GeneratedDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}

	app.taskStore = store.NewMemoryTaskStore()
	app.catalog = catalog.NewDefaultCatalog()

	app.taskMirror = store.NewNoopTaskMirror()
	if cfg.Database.URL != "" {
		app.db, err = setupAppDatabase(cfg, logger)
		if err != nil {
			// The mirror is best-effort; an unreachable database must not
			// prevent startup.
			logger.Warn("Database unavailable, task persistence disabled", "error", err)
		} else {
			app.taskMirror = postgres.NewTaskMirror(app.db)
		}
	}

	if cfg.Provider.GeminiAPIKey != "" {
		app.generator, err = gemini.NewGenerator(ctx, logger.With("component", "generator"), cfg.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
		}
		logger.Info("Generation provider initialized", "model", cfg.Provider.Model)
	} else {
		logger.Info("No provider API key configured, tasks will complete via simulation")
	}

	app.pipeline, err = task.NewPipeline(
		app.taskStore,
		app.taskMirror,
		app.images,
		app.catalog,
		app.generator,
		logger,
		task.PipelineConfig{
			SimulatorStepDelay: time.Duration(cfg.Pipeline.SimulatorStepDelayMs) * time.Millisecond,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task pipeline: %w", err)
	}

	if err := app.pipeline.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore tasks: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during graceful shutdown.
func (app *application) cleanup() {
	if app.pipeline != nil {
		app.pipeline.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
