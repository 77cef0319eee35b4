package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/filetracker/internal/config"
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/session"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/sqlite"
	"github.com/rpggio/filetracker/internal/store"
)

// app holds the storage shared by every command.
type app struct {
	db       *sqlite.DB
	store    *store.Projects
	sessions *session.Store
	projects *project.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	projects, err := store.Open(ctx, cfg.Store, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		db:       db,
		store:    projects,
		sessions: session.NewStore(sqlite.NewKVRepository(db), logger),
		projects: project.NewService(projects.Repository, logger),
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
	_ = a.db.Close()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// logNotifier surfaces notifications in the log when no panel is open.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(m message.Notification) {
	if m.Level == message.LevelError {
		n.logger.Error(m.Value)
		return
	}
	n.logger.Info(m.Value)
}
