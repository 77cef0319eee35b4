package panel_test

import (
	"strings"
	"testing"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/panel"
	"github.com/stretchr/testify/require"
)

func loggedIn(t *testing.T, workspace string, projects ...project.Project) *panel.State {
	t.Helper()
	s := panel.NewState()
	require.Equal(t, []message.Request{message.GetProjects{}},
		s.Apply(message.UserData{Value: user.User{UID: "u1", DisplayName: "Ada"}}))
	if workspace != "" {
		require.Empty(t, s.Apply(message.CurrentWorkspace{Value: &workspace}))
	}
	require.Empty(t, s.Apply(message.Projects{Value: projects}))
	return s
}

func TestMountRequests(t *testing.T) {
	require.Equal(t, []message.Request{message.GetUserData{}, message.GetCurrentWorkspace{}}, panel.MountRequests())
}

func TestView_Loading(t *testing.T) {
	v := panel.NewState().View()
	require.True(t, v.Loading)

	html, err := panel.Render(v)
	require.NoError(t, err)
	require.Contains(t, html, "Loading...")
	require.NotContains(t, html, "<button")
}

func TestView_NeverLoggedIn(t *testing.T) {
	s := panel.NewState()
	require.Empty(t, s.Apply(message.UserDataNotFound{}))

	v := s.View()
	require.False(t, v.LoggedIn)
	require.Equal(t, message.AuthenticateUser{}, v.Login.Request)

	html, err := panel.Render(v)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(html, "<button"))
	require.Contains(t, html, `data-type="authenticateUser"`)
	require.Contains(t, html, panel.LabelLogin)
}

func TestView_SaveWhenNoMatch(t *testing.T) {
	s := loggedIn(t, "demo", project.Project{ID: "p1", Name: "other"})

	v := s.View()
	require.NotNil(t, v.Action)
	require.Equal(t, panel.LabelSave, v.Action.Label)
	require.Equal(t, message.SaveProject{}, v.Action.Request)

	require.Equal(t, []message.Request{message.GetProjects{}}, s.Apply(message.ProjectSaved{}))
	s.Apply(message.Projects{Value: []project.Project{
		{ID: "p1", Name: "other"},
		{ID: "p2", Name: "demo"},
	}})

	v = s.View()
	require.Equal(t, "demo", v.Projects[0].Name)
	require.True(t, v.Projects[0].Current)
	require.Equal(t, panel.LabelUpdate, v.Action.Label)
}

func TestView_UpdateWhenMatch(t *testing.T) {
	s := loggedIn(t, "demo",
		project.Project{ID: "p1", Name: "alpha"},
		project.Project{ID: "p2", Name: "demo"},
	)

	v := s.View()
	require.Equal(t, panel.LabelUpdate, v.Action.Label)
	require.Equal(t, message.UpdateProject{ProjectID: "p2"}, v.Action.Request)

	html, err := panel.Render(v)
	require.NoError(t, err)
	require.Contains(t, html, `data-type="updateProject" data-project-id="p2"`)
	require.NotContains(t, html, `data-type="saveProject"`)
}

func TestView_NoWorkspace(t *testing.T) {
	s := loggedIn(t, "", project.Project{ID: "p1", Name: "demo"})
	v := s.View()
	require.Nil(t, v.Action)
	require.Empty(t, v.Workspace)
	require.False(t, v.Projects[0].Current)

	html, err := panel.Render(v)
	require.NoError(t, err)
	require.NotContains(t, html, "Current workspace")
}

func TestView_Sorting(t *testing.T) {
	s := loggedIn(t, "demo",
		project.Project{ID: "1", Name: "zeta"},
		project.Project{ID: "2", Name: "Beta"},
		project.Project{ID: "3", Name: "demo"},
		project.Project{ID: "4", Name: "alpha"},
		project.Project{ID: "5", Name: "Émile"},
	)

	var names []string
	for _, p := range s.View().Projects {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"demo", "alpha", "Beta", "Émile", "zeta"}, names)
}

func TestView_FilesAndDelete(t *testing.T) {
	s := loggedIn(t, "demo", project.Project{
		ID:   "p1",
		Name: "demo",
		Files: []project.ProjectFile{
			{Name: "src", Path: "/w/demo/src", Type: project.TypeDirectory},
			{Name: "main.go", Path: "/w/demo/src/main.go", Type: project.TypeFile},
		},
	})

	v := s.View()
	require.Equal(t, []string{"src", "main.go"}, v.Projects[0].Files)
	require.Equal(t, message.DeleteProject{ProjectID: "p1"}, v.Projects[0].Delete.Request)

	html, err := panel.Render(v)
	require.NoError(t, err)
	require.Contains(t, html, "Welcome, Ada")
	require.Contains(t, html, `data-type="deleteProject" data-project-id="p1"`)
	require.Contains(t, html, `data-type="logout"`)
	require.Contains(t, html, "main.go")
	require.Contains(t, html, "Current Project")
}

func TestRender_Escapes(t *testing.T) {
	s := panel.NewState()
	s.Apply(message.UserData{Value: user.User{UID: "u1", DisplayName: "<script>x</script>"}})
	html, err := panel.Render(s.View())
	require.NoError(t, err)
	require.NotContains(t, html, "<script>x")
}

func TestApply_DeleteAndLogout(t *testing.T) {
	s := loggedIn(t, "demo", project.Project{ID: "p1", Name: "demo"})
	require.Equal(t, []message.Request{message.GetProjects{}}, s.Apply(message.ProjectDeleted{}))

	require.Empty(t, s.Apply(message.UserDataNotFound{}))
	v := s.View()
	require.False(t, v.LoggedIn)
	require.Empty(t, v.Projects)
}

func TestApply_HostEventsIgnored(t *testing.T) {
	s := panel.NewState()
	require.Empty(t, s.Apply(message.Info("hi")))
	require.Empty(t, s.Apply(message.Reload{}))
	require.True(t, s.View().Loading)
}
