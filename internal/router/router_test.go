package router_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/session"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/router"
	"github.com/rpggio/filetracker/internal/sqlite"
	"github.com/rpggio/filetracker/internal/workspace"
	"github.com/stretchr/testify/require"
)

type notifier struct {
	mu   sync.Mutex
	seen []message.Notification
}

func (n *notifier) Notify(m message.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, m)
}

func (n *notifier) all() []message.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]message.Notification(nil), n.seen...)
}

type authenticator struct {
	user *user.User
	err  error
	done chan struct{}
}

func (a *authenticator) Authenticate(context.Context) (*user.User, error) {
	defer close(a.done)
	return a.user, a.err
}

type failingProjects struct{}

func (failingProjects) SaveProject(context.Context, string, []project.ProjectFile, string) (string, error) {
	return "", errors.New("store down")
}
func (failingProjects) UpdateProject(context.Context, string, []project.ProjectFile) error {
	return errors.New("store down")
}
func (failingProjects) GetProjects(context.Context, string) ([]project.Project, error) {
	return nil, errors.New("store down")
}
func (failingProjects) DeleteProject(context.Context, string) error {
	return errors.New("store down")
}

// countingProjects fails the test if the store is reached.
type countingProjects struct {
	router.Projects
	calls int
}

func (c *countingProjects) SaveProject(ctx context.Context, name string, files []project.ProjectFile, uid string) (string, error) {
	c.calls++
	return c.Projects.SaveProject(ctx, name, files, uid)
}

func (c *countingProjects) UpdateProject(ctx context.Context, id string, files []project.ProjectFile) error {
	c.calls++
	return c.Projects.UpdateProject(ctx, id, files)
}

type env struct {
	router   *router.Router
	sessions *session.Store
	projects *project.Service
	notifier *notifier
	auth     *authenticator
}

func newEnv(t *testing.T, folders []string) *env {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	e := &env{
		sessions: session.NewStore(sqlite.NewKVRepository(db), nil),
		projects: project.NewService(sqlite.NewProjectRepository(db), nil),
		notifier: &notifier{},
		auth:     &authenticator{done: make(chan struct{})},
	}
	e.router = router.New(e.sessions, e.projects, workspace.New(folders), e.auth, e.notifier)
	return e
}

func newWorkspace(t *testing.T, name string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main"), 0o644))
	return root
}

func (e *env) send(t *testing.T, req message.Request) []message.Response {
	t.Helper()
	var out []message.Response
	e.router.Handle(context.Background(), req, func(r message.Response) {
		out = append(out, r)
	})
	return out
}

func (e *env) login(t *testing.T) user.User {
	t.Helper()
	u := user.User{UID: "u1", DisplayName: "Ada", Email: "ada@example.com"}
	require.NoError(t, e.sessions.Set(context.Background(), &u))
	return u
}

func TestGetUserData_NoSession(t *testing.T) {
	e := newEnv(t, nil)
	for range 3 {
		require.Equal(t, []message.Response{message.UserDataNotFound{}}, e.send(t, message.GetUserData{}))
	}
}

func TestGetUserData_AfterSet(t *testing.T) {
	e := newEnv(t, nil)
	u := e.login(t)
	for range 3 {
		require.Equal(t, []message.Response{message.UserData{Value: u}}, e.send(t, message.GetUserData{}))
	}
}

func TestLogout(t *testing.T) {
	e := newEnv(t, nil)
	e.login(t)

	require.Equal(t, []message.Response{message.UserDataNotFound{}}, e.send(t, message.Logout{}))
	require.Equal(t, []message.Response{message.UserDataNotFound{}}, e.send(t, message.GetUserData{}))
}

func TestAuthenticateUser_DoesNotClearSession(t *testing.T) {
	e := newEnv(t, nil)
	u := e.login(t)
	e.auth.user = &u

	require.Empty(t, e.send(t, message.AuthenticateUser{}))
	<-e.auth.done

	require.Equal(t, []message.Response{message.UserData{Value: u}}, e.send(t, message.GetUserData{}))
	require.Empty(t, e.notifier.all())
}

func TestAuthenticateUser_FailureNotifies(t *testing.T) {
	e := newEnv(t, nil)
	e.auth.err = errors.New("malformed")

	require.Empty(t, e.send(t, message.AuthenticateUser{}))
	<-e.auth.done

	require.Eventually(t, func() bool {
		return len(e.notifier.all()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, message.Error(router.MsgAuthFailed), e.notifier.all()[0])
}

func TestAuthenticateUser_CanceledIsSilent(t *testing.T) {
	e := newEnv(t, nil)
	e.auth.err = context.Canceled

	require.Empty(t, e.send(t, message.AuthenticateUser{}))
	<-e.auth.done

	require.Never(t, func() bool {
		return len(e.notifier.all()) > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestGetProjects_LoggedOut(t *testing.T) {
	e := newEnv(t, nil)
	require.Empty(t, e.send(t, message.GetProjects{}))
	require.Empty(t, e.notifier.all())
}

func TestSaveProject_ThenGetProjects(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	u := e.login(t)

	require.Equal(t, []message.Response{message.ProjectSaved{}}, e.send(t, message.SaveProject{}))
	require.Equal(t, []message.Notification{message.Info(router.MsgProjectSaved)}, e.notifier.all())

	out := e.send(t, message.GetProjects{})
	require.Len(t, out, 1)
	projects := out[0].(message.Projects).Value
	require.Len(t, projects, 1)
	require.Equal(t, "demo", projects[0].Name)
	require.Equal(t, u.UID, projects[0].UserID)
	require.Len(t, projects[0].Files, 2)
}

func TestSaveProject_LoggedOut(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	store := &countingProjects{Projects: e.projects}
	r := router.New(e.sessions, store, workspace.New([]string{newWorkspace(t, "demo")}), e.auth, e.notifier)

	var out []message.Response
	r.Handle(context.Background(), message.SaveProject{}, func(m message.Response) { out = append(out, m) })

	require.Empty(t, out)
	require.Zero(t, store.calls)
	require.Equal(t, []message.Notification{message.Error(router.MsgNotLoggedIn)}, e.notifier.all())
}

func TestSaveAndUpdate_NoWorkspace(t *testing.T) {
	e := newEnv(t, nil)
	e.login(t)
	store := &countingProjects{Projects: e.projects}
	r := router.New(e.sessions, store, workspace.New(nil), e.auth, e.notifier)

	for _, req := range []message.Request{message.SaveProject{}, message.UpdateProject{ProjectID: "p1"}} {
		var out []message.Response
		r.Handle(context.Background(), req, func(m message.Response) { out = append(out, m) })
		require.Empty(t, out)
	}
	require.Zero(t, store.calls)
	require.Equal(t, []message.Notification{
		message.Error(router.MsgNoWorkspace),
		message.Error(router.MsgNoWorkspace),
	}, e.notifier.all())
}

func TestUpdateProject(t *testing.T) {
	root := newWorkspace(t, "demo")
	e := newEnv(t, []string{root})
	u := e.login(t)

	id, err := e.projects.SaveProject(context.Background(), "demo", nil, u.UID)
	require.NoError(t, err)

	require.Equal(t, []message.Response{message.ProjectSaved{}}, e.send(t, message.UpdateProject{ProjectID: id}))
	require.Equal(t, []message.Notification{message.Info(router.MsgProjectUpdated)}, e.notifier.all())

	projects, err := e.projects.GetProjects(context.Background(), u.UID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, id, projects[0].ID)
	require.Len(t, projects[0].Files, 2)
}

func TestUpdateProject_UnknownID(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	e.login(t)

	require.Empty(t, e.send(t, message.UpdateProject{ProjectID: "missing"}))
	require.Equal(t, []message.Notification{message.Error(router.MsgUpdateFailed)}, e.notifier.all())
}

func TestDeleteProject(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	u := e.login(t)
	id, err := e.projects.SaveProject(context.Background(), "demo", nil, u.UID)
	require.NoError(t, err)

	require.Equal(t, []message.Response{message.ProjectDeleted{}}, e.send(t, message.DeleteProject{ProjectID: id}))
	require.Equal(t, []message.Notification{message.Info(router.MsgProjectDeleted)}, e.notifier.all())

	out := e.send(t, message.GetProjects{})
	require.Equal(t, []message.Response{message.Projects{Value: []project.Project{}}}, out)
}

func TestStoreFailures(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	e.login(t)
	r := router.New(e.sessions, failingProjects{}, workspace.New([]string{newWorkspace(t, "demo")}), e.auth, e.notifier)

	reqs := []message.Request{
		message.GetProjects{},
		message.SaveProject{},
		message.UpdateProject{ProjectID: "p1"},
		message.DeleteProject{ProjectID: "p1"},
	}
	for _, req := range reqs {
		var out []message.Response
		r.Handle(context.Background(), req, func(m message.Response) { out = append(out, m) })
		require.Empty(t, out, req.Type())
	}
	require.Equal(t, []message.Notification{
		message.Error(router.MsgLoadFailed),
		message.Error(router.MsgSaveFailed),
		message.Error(router.MsgUpdateFailed),
		message.Error(router.MsgDeleteFailed),
	}, e.notifier.all())
}

func TestGetCurrentWorkspace(t *testing.T) {
	e := newEnv(t, []string{newWorkspace(t, "demo")})
	out := e.send(t, message.GetCurrentWorkspace{})
	require.Len(t, out, 1)
	ws := out[0].(message.CurrentWorkspace)
	require.NotNil(t, ws.Value)
	require.Equal(t, "demo", *ws.Value)

	e = newEnv(t, nil)
	require.Equal(t, []message.Response{message.CurrentWorkspace{}}, e.send(t, message.GetCurrentWorkspace{}))
}

func TestOnInfoOnError(t *testing.T) {
	e := newEnv(t, nil)
	e.send(t, message.OnInfo{})
	e.send(t, message.OnError{})
	require.Empty(t, e.notifier.all())

	e.send(t, message.OnInfo{Value: "hello"})
	e.send(t, message.OnError{Value: "boom"})
	require.Equal(t, []message.Notification{message.Info("hello"), message.Error("boom")}, e.notifier.all())
}
