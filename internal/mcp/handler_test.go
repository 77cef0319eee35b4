package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/stretchr/testify/require"
)

type sessionStub struct {
	user *user.User
	err  error
}

func (s sessionStub) Get(context.Context) (*user.User, error) {
	return s.user, s.err
}

type projectStub struct {
	saveFn   func(context.Context, string, []project.ProjectFile, string) (string, error)
	updateFn func(context.Context, string, []project.ProjectFile) error
	listFn   func(context.Context, string) ([]project.Project, error)
	deleteFn func(context.Context, string) error
}

func (p projectStub) SaveProject(ctx context.Context, name string, files []project.ProjectFile, userID string) (string, error) {
	return p.saveFn(ctx, name, files, userID)
}
func (p projectStub) UpdateProject(ctx context.Context, id string, files []project.ProjectFile) error {
	return p.updateFn(ctx, id, files)
}
func (p projectStub) GetProjects(ctx context.Context, userID string) ([]project.Project, error) {
	return p.listFn(ctx, userID)
}
func (p projectStub) DeleteProject(ctx context.Context, id string) error {
	return p.deleteFn(ctx, id)
}

type workspaceStub struct {
	name  string
	files []project.ProjectFile
}

func (w workspaceStub) Name() (string, bool) {
	return w.name, w.name != ""
}
func (w workspaceStub) ListFiles(context.Context) ([]project.ProjectFile, error) {
	return w.files, nil
}

var ada = &user.User{UID: "u1", DisplayName: "Ada", Email: "ada@example.com"}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
}

func TestHandler_NotLoggedIn(t *testing.T) {
	h := NewHandler(sessionStub{}, projectStub{}, workspaceStub{name: "demo"})
	ctx := context.Background()

	_, err := h.Whoami(ctx)
	requireCode(t, err, "NOT_LOGGED_IN")
	_, err = h.ListProjects(ctx)
	requireCode(t, err, "NOT_LOGGED_IN")
	_, err = h.SnapshotWorkspace(ctx)
	requireCode(t, err, "NOT_LOGGED_IN")
	_, err = h.DeleteProject(ctx, DeleteProjectParams{ID: "p1"})
	requireCode(t, err, "NOT_LOGGED_IN")
}

func TestHandler_SessionError(t *testing.T) {
	h := NewHandler(sessionStub{err: errors.New("corrupt")}, projectStub{}, workspaceStub{})
	_, err := h.Whoami(context.Background())
	require.ErrorContains(t, err, "corrupt")
}

func TestHandler_Whoami(t *testing.T) {
	h := NewHandler(sessionStub{user: ada}, projectStub{}, workspaceStub{})
	resp, err := h.Whoami(context.Background())
	require.NoError(t, err)
	require.Equal(t, &WhoamiResponse{UID: "u1", DisplayName: "Ada", Email: "ada@example.com"}, resp)
}

func TestHandler_ListProjects(t *testing.T) {
	projects := projectStub{listFn: func(_ context.Context, uid string) ([]project.Project, error) {
		require.Equal(t, "u1", uid)
		return []project.Project{
			{ID: "p1", Name: "demo", Files: make([]project.ProjectFile, 3)},
			{ID: "p2", Name: "other"},
		}, nil
	}}
	h := NewHandler(sessionStub{user: ada}, projects, workspaceStub{name: "demo"})

	resp, err := h.ListProjects(context.Background())
	require.NoError(t, err)
	require.Equal(t, "demo", resp.Workspace)
	require.Len(t, resp.Projects, 2)
	require.Equal(t, 3, resp.Projects[0].FileCount)
	require.True(t, resp.Projects[0].Current)
	require.False(t, resp.Projects[1].Current)
}

func TestHandler_SnapshotSavesWhenNoMatch(t *testing.T) {
	files := []project.ProjectFile{{Name: "a.txt", Path: "/w/demo/a.txt", Type: project.TypeFile}}
	var saved string
	projects := projectStub{
		listFn: func(context.Context, string) ([]project.Project, error) {
			return []project.Project{{ID: "p2", Name: "other"}}, nil
		},
		saveFn: func(_ context.Context, name string, got []project.ProjectFile, uid string) (string, error) {
			saved = name
			require.Equal(t, files, got)
			require.Equal(t, "u1", uid)
			return "new-id", nil
		},
		updateFn: func(context.Context, string, []project.ProjectFile) error {
			t.Fatal("update must not be called")
			return nil
		},
	}
	h := NewHandler(sessionStub{user: ada}, projects, workspaceStub{name: "demo", files: files})

	resp, err := h.SnapshotWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, "demo", saved)
	require.Equal(t, &SnapshotWorkspaceResponse{ID: "new-id", Name: "demo", Action: ActionSaved, FileCount: 1}, resp)
}

func TestHandler_SnapshotUpdatesMatch(t *testing.T) {
	var updated string
	projects := projectStub{
		listFn: func(context.Context, string) ([]project.Project, error) {
			return []project.Project{{ID: "p1", Name: "demo"}, {ID: "p3", Name: "demo"}}, nil
		},
		updateFn: func(_ context.Context, id string, _ []project.ProjectFile) error {
			updated = id
			return nil
		},
		saveFn: func(context.Context, string, []project.ProjectFile, string) (string, error) {
			t.Fatal("save must not be called")
			return "", nil
		},
	}
	h := NewHandler(sessionStub{user: ada}, projects, workspaceStub{name: "demo"})

	resp, err := h.SnapshotWorkspace(context.Background())
	require.NoError(t, err)
	require.Equal(t, "p1", updated)
	require.Equal(t, ActionUpdated, resp.Action)
}

func TestHandler_SnapshotNoWorkspace(t *testing.T) {
	h := NewHandler(sessionStub{user: ada}, projectStub{}, workspaceStub{})
	_, err := h.SnapshotWorkspace(context.Background())
	requireCode(t, err, "NO_WORKSPACE")
}

func TestHandler_DeleteProject(t *testing.T) {
	var deleted string
	projects := projectStub{
		listFn: func(context.Context, string) ([]project.Project, error) {
			return []project.Project{{ID: "p1", Name: "demo"}}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	h := NewHandler(sessionStub{user: ada}, projects, workspaceStub{})

	resp, err := h.DeleteProject(context.Background(), DeleteProjectParams{ID: "p1"})
	require.NoError(t, err)
	require.True(t, resp.Deleted)
	require.Equal(t, "p1", deleted)

	_, err = h.DeleteProject(context.Background(), DeleteProjectParams{ID: "someone-elses"})
	requireCode(t, err, "PROJECT_NOT_FOUND")

	_, err = h.DeleteProject(context.Background(), DeleteProjectParams{})
	requireCode(t, err, "INVALID_INPUT")
}

func TestMapError_PassesThroughUnknown(t *testing.T) {
	boom := errors.New("boom")
	require.Equal(t, boom, MapError(boom))
	require.Nil(t, MapError(nil))
}
