package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/filetracker/internal/metrics"
	"github.com/rpggio/filetracker/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// SaveProject stores a new project snapshot for userID and returns its id.
func (s *Service) SaveProject(ctx context.Context, name string, files []ProjectFile, userID string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(userID) == "" {
		return "", ErrInvalidInput
	}
	if files == nil {
		files = []ProjectFile{}
	}

	now := s.now().UnixMilli()
	proj := &Project{
		Name:      name,
		Files:     files,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Create(ctx, proj)
	metrics.RecordStoreOperation("save", err)
	if err != nil {
		return "", fmt.Errorf("creating project: %w", err)
	}

	s.logger.Debug("project saved", "id", id, "name", name, "files", len(files))
	return id, nil
}

// UpdateProject replaces the file snapshot of an existing project.
func (s *Service) UpdateProject(ctx context.Context, id string, files []ProjectFile) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if files == nil {
		files = []ProjectFile{}
	}

	err := s.repo.UpdateFiles(ctx, id, files, s.now().UnixMilli())
	metrics.RecordStoreOperation("update", err)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("updating project: %w", err)
	}

	s.logger.Debug("project updated", "id", id, "files", len(files))
	return nil
}

// GetProjects returns every project owned by userID.
func (s *Service) GetProjects(ctx context.Context, userID string) ([]Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	projects, err := s.repo.ListByUser(ctx, userID)
	metrics.RecordStoreOperation("list", err)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// DeleteProject removes a project by id.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}

	err := s.repo.Delete(ctx, id)
	metrics.RecordStoreOperation("delete", err)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.logger.Debug("project deleted", "id", id)
	return nil
}

// FindByName returns the first project named name, mirroring how the panel
// matches the open workspace against stored projects.
func FindByName(projects []Project, name string) (Project, bool) {
	for _, p := range projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}
