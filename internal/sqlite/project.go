package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project and returns its generated id
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) (string, error) {
	files, err := json.Marshal(proj.Files)
	if err != nil {
		return "", fmt.Errorf("failed to encode files: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO projects (id, user_id, name, files, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		id,
		proj.UserID,
		proj.Name,
		string(files),
		proj.CreatedAt,
		proj.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create project: %w", err)
	}

	proj.ID = id
	return id, nil
}

// UpdateFiles overwrites the file listing and updated_at of a project
func (r *ProjectRepository) UpdateFiles(ctx context.Context, id string, files []project.ProjectFile, updatedAt int64) error {
	encoded, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET files = ?, updated_at = ? WHERE id = ?`,
		string(encoded), updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser returns every project owned by userID
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	query := `
		SELECT id, user_id, name, files, created_at, updated_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		var (
			proj  project.Project
			files string
		)
		if err := rows.Scan(&proj.ID, &proj.UserID, &proj.Name, &files, &proj.CreatedAt, &proj.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &proj.Files); err != nil {
			return nil, fmt.Errorf("failed to decode files of project %s: %w", proj.ID, err)
		}
		projects = append(projects, proj)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Delete removes a project; deleting an absent id is not an error
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
