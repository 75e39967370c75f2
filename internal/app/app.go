// Package app builds the storage backend and services from config.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IlyasAtabaev731/expense-tracker/internal/api"
	"github.com/IlyasAtabaev731/expense-tracker/internal/config"
	"github.com/IlyasAtabaev731/expense-tracker/internal/lib/jwt"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/auth"
	"github.com/IlyasAtabaev731/expense-tracker/internal/services/expenses"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage/memory"
	"github.com/IlyasAtabaev731/expense-tracker/internal/storage/postgres"
)

const (
	migrationsTable = "migrations"

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout = 5 * time.Second
)

// Storage is everything the services need from a backend.
type Storage interface {
	auth.UserSaver
	auth.UserProvider
	expenses.Storage
	Ping(ctx context.Context) error
	Stop() error
}

type App struct {
	APIServer *api.APIServer
	Storage   Storage
}

func New(log *slog.Logger, cfg *config.Config) (*App, error) {
	storage, err := OpenStorage(log, cfg)
	if err != nil {
		return nil, err
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := auth.New(log, storage, storage, tokens)
	expenseService := expenses.New(log, storage, cfg.MonthlyLimit)

	apiServer := api.New(cfg, log, authService, expenseService, tokens, storage)

	return &App{
		APIServer: apiServer,
		Storage:   storage,
	}, nil
}

// OpenStorage connects the configured backend and applies migrations when
// enabled.
func OpenStorage(log *slog.Logger, cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage, data will not survive a restart")
		return memory.New(), nil
	case config.BackendPostgres:
		storage, err := postgres.New(cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if cfg.MigrateOnStart {
			if err := storage.Migrate(migrationsTable); err != nil {
				_ = storage.Stop()
				return nil, err
			}
			log.Info("Migrations applied")
		}

		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Stop shuts the HTTP server down and closes storage.
func (a *App) Stop(ctx context.Context) error {
	if err := a.APIServer.Stop(ctx); err != nil {
		return err
	}
	return a.Storage.Stop()
}
