package mcp

import (
	"context"
	"fmt"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
)

// Snapshot actions.
const (
	ActionSaved   = "saved"
	ActionUpdated = "updated"
)

// Handler implements the MCP tools on top of the domain services.
type Handler struct {
	sessions  SessionReader
	projects  ProjectService
	workspace Workspace
}

// NewHandler creates a new MCP handler.
func NewHandler(sessions SessionReader, projects ProjectService, workspace Workspace) *Handler {
	return &Handler{sessions: sessions, projects: projects, workspace: workspace}
}

func (h *Handler) Whoami(ctx context.Context) (*WhoamiResponse, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &WhoamiResponse{UID: u.UID, DisplayName: u.DisplayName, Email: u.Email}, nil
}

func (h *Handler) ListProjects(ctx context.Context) (*ListProjectsResponse, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := h.projects.GetProjects(ctx, u.UID)
	if err != nil {
		return nil, MapError(err)
	}

	workspace, _ := h.workspace.Name()
	resp := &ListProjectsResponse{
		Workspace: workspace,
		Projects:  make([]ProjectSummary, 0, len(projects)),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ProjectSummary{
			ID:        p.ID,
			Name:      p.Name,
			FileCount: len(p.Files),
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			Current:   workspace != "" && p.Name == workspace,
		})
	}
	return resp, nil
}

// SnapshotWorkspace updates the project named after the workspace, or saves
// a new one when none matches.
func (h *Handler) SnapshotWorkspace(ctx context.Context) (*SnapshotWorkspaceResponse, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name, ok := h.workspace.Name()
	if !ok {
		return nil, MapError(ErrNoWorkspace)
	}

	projects, err := h.projects.GetProjects(ctx, u.UID)
	if err != nil {
		return nil, MapError(err)
	}
	files, err := h.workspace.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing workspace files: %w", err)
	}

	if match, found := project.FindByName(projects, name); found {
		if err := h.projects.UpdateProject(ctx, match.ID, files); err != nil {
			return nil, MapError(err)
		}
		return &SnapshotWorkspaceResponse{ID: match.ID, Name: name, Action: ActionUpdated, FileCount: len(files)}, nil
	}

	id, err := h.projects.SaveProject(ctx, name, files, u.UID)
	if err != nil {
		return nil, MapError(err)
	}
	return &SnapshotWorkspaceResponse{ID: id, Name: name, Action: ActionSaved, FileCount: len(files)}, nil
}

// DeleteProject deletes one of the logged-in user's projects.
func (h *Handler) DeleteProject(ctx context.Context, params DeleteProjectParams) (*DeleteProjectResponse, error) {
	u, err := h.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, MapError(project.ErrInvalidInput)
	}

	projects, err := h.projects.GetProjects(ctx, u.UID)
	if err != nil {
		return nil, MapError(err)
	}
	owned := false
	for _, p := range projects {
		if p.ID == params.ID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, MapError(project.ErrProjectNotFound)
	}

	if err := h.projects.DeleteProject(ctx, params.ID); err != nil {
		return nil, MapError(err)
	}
	return &DeleteProjectResponse{ID: params.ID, Deleted: true}, nil
}

func (h *Handler) currentUser(ctx context.Context) (*user.User, error) {
	u, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if u == nil {
		return nil, MapError(ErrNotLoggedIn)
	}
	return u, nil
}
