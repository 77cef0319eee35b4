package project

import "context"

// Repository provides persistence for projects.
type Repository interface {
	// Create stores proj and returns the id assigned by the store.
	Create(ctx context.Context, proj *Project) (string, error)
	UpdateFiles(ctx context.Context, id string, files []ProjectFile, updatedAt int64) error
	ListByUser(ctx context.Context, userID string) ([]Project, error)
	Delete(ctx context.Context, id string) error
}
