package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/repository"
)

// Key is the storage key holding the last authenticated user.
const Key = "userData"

// Store persists the single active user across restarts.
type Store struct {
	repo   KVRepository
	logger *slog.Logger
}

// NewStore creates a session store over repo.
func NewStore(repo KVRepository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{repo: repo, logger: logger}
}

// Get returns the stored user, or nil when nobody is logged in.
func (s *Store) Get(ctx context.Context) (*user.User, error) {
	raw, err := s.repo.Get(ctx, Key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var u user.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	return &u, nil
}

// Set replaces the stored user.
func (s *Store) Set(ctx context.Context, u *user.User) error {
	if u == nil {
		return s.Clear(ctx)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.repo.Put(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	s.logger.Info("session stored", "uid", u.UID)
	return nil
}

// Clear removes the stored user.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}
