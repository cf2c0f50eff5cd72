// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, metrics,
// background dispatch) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ryanmio/actblue-jail/internal/config"
	"github.com/ryanmio/actblue-jail/internal/observability/metrics"
	"github.com/ryanmio/actblue-jail/pkg/database"
	"github.com/ryanmio/actblue-jail/pkg/dispatch"
	"github.com/ryanmio/actblue-jail/pkg/lifecycle"
	"github.com/ryanmio/actblue-jail/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Metrics    *metrics.Metrics
	Dispatcher *dispatch.Dispatcher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Metrics:    metrics.New(),
		Dispatcher: dispatch.New(logger, cfg.API.DispatchTimeoutDuration()),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The dispatcher drains in-flight background tasks on shutdown.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	i.Lifecycle.OnShutdown(i.Dispatcher.Wait)
	return nil
}
