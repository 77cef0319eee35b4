package mocks

import (
	"context"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) (string, error) {
	args := m.Called(ctx, proj)
	return args.String(0), args.Error(1)
}

func (m *ProjectRepository) UpdateFiles(ctx context.Context, id string, files []project.ProjectFile, updatedAt int64) error {
	args := m.Called(ctx, id, files, updatedAt)
	return args.Error(0)
}

func (m *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// KVRepository is a mock for session.KVRepository.
type KVRepository struct {
	mock.Mock
}

func (m *KVRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *KVRepository) Put(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KVRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
