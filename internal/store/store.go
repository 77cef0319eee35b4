// Package store opens the project repository selected by configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/filetracker/internal/config"
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/firestore"
	"github.com/rpggio/filetracker/internal/postgres"
	"github.com/rpggio/filetracker/internal/sqlite"
)

// Projects is an open project repository and the function releasing it.
type Projects struct {
	Repository project.Repository
	Close      func() error
}

// Open returns the project repository for cfg.Backend. The sqlite backend
// shares local, which must already be migrated.
func Open(ctx context.Context, cfg config.StoreConfig, local *sqlite.DB, logger *slog.Logger) (*Projects, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch cfg.Backend {
	case config.BackendSQLite, "":
		logger.Debug("project store", "backend", config.BackendSQLite)
		return &Projects{
			Repository: sqlite.NewProjectRepository(local),
			Close:      func() error { return nil },
		}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Debug("project store", "backend", config.BackendPostgres)
		return &Projects{Repository: postgres.NewProjectRepository(db), Close: db.Close}, nil

	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
		if err != nil {
			return nil, err
		}
		logger.Debug("project store", "backend", config.BackendFirestore, "project", cfg.FirestoreProject)
		return &Projects{Repository: firestore.NewProjectRepository(client), Close: client.Close}, nil

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalid, cfg.Backend)
	}
}
