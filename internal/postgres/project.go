package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/repository"
)

// ProjectRepository implements project.Repository over a DBTX.
type ProjectRepository struct {
	db DBTX
}

// NewProjectRepository constructs a repository bound to the given DBTX.
func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project under a generated id.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) (string, error) {
	files, err := json.Marshal(proj.Files)
	if err != nil {
		return "", fmt.Errorf("encode files: %w", err)
	}

	id := uuid.NewString()
	query := `
		INSERT INTO projects (id, user_id, name, files, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, id, proj.UserID, proj.Name, files, proj.CreatedAt, proj.UpdatedAt); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	proj.ID = id
	return id, nil
}

// UpdateFiles overwrites files and updated_at of project id.
// Returns repository.ErrNotFound when no row matches.
func (r *ProjectRepository) UpdateFiles(ctx context.Context, id string, files []project.ProjectFile, updatedAt int64) error {
	encoded, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET files = $1, updated_at = $2 WHERE id = $3`,
		encoded, updatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser returns all projects whose user_id equals userID.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	query := `SELECT id, user_id, name, files, created_at, updated_at FROM projects WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []project.Project
	for rows.Next() {
		var (
			item  project.Project
			files []byte
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &files, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(files, &item.Files); err != nil {
			return nil, fmt.Errorf("decode files of project %s: %w", item.ID, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes project id unconditionally.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
