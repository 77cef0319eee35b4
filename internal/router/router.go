// Package router dispatches panel requests to the session store, the project
// store, the workspace enumerator and the authentication flow.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/metrics"
)

// Notification texts shown to the user.
const (
	MsgNoWorkspace    = "No workspace is currently open"
	MsgNotLoggedIn    = "You must be logged in to save a project"
	MsgAuthFailed     = "Authentication failed. Please try again."
	MsgProjectSaved   = "Project saved successfully"
	MsgProjectUpdated = "Project updated successfully"
	MsgProjectDeleted = "Project deleted successfully"
	MsgLoadFailed     = "Failed to load projects"
	MsgSaveFailed     = "Failed to save project"
	MsgUpdateFailed   = "Failed to update project"
	MsgDeleteFailed   = "Failed to delete project"
	MsgLogoutFailed   = "Failed to log out"
)

// Sessions reads and clears the persisted user.
type Sessions interface {
	Get(ctx context.Context) (*user.User, error)
	Clear(ctx context.Context) error
}

// Projects is the project store façade.
type Projects interface {
	SaveProject(ctx context.Context, name string, files []project.ProjectFile, userID string) (string, error)
	UpdateProject(ctx context.Context, id string, files []project.ProjectFile) error
	GetProjects(ctx context.Context, userID string) ([]project.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Workspace enumerates the open workspace.
type Workspace interface {
	Name() (string, bool)
	ListFiles(ctx context.Context) ([]project.ProjectFile, error)
}

// Authenticator runs one login flow.
type Authenticator interface {
	Authenticate(ctx context.Context) (*user.User, error)
}

// Notifier surfaces a notification to the user.
type Notifier interface {
	Notify(n message.Notification)
}

// Router handles every panel request. It holds no state of its own.
type Router struct {
	sessions  Sessions
	projects  Projects
	workspace Workspace
	auth      Authenticator
	notifier  Notifier
	logger    *slog.Logger
	baseCtx   context.Context
}

var _ message.Handler = (*Router)(nil)

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithBaseContext sets the context background login flows run under.
func WithBaseContext(ctx context.Context) Option {
	return func(r *Router) {
		if ctx != nil {
			r.baseCtx = ctx
		}
	}
}

// New creates a router.
func New(sessions Sessions, projects Projects, ws Workspace, auth Authenticator, notifier Notifier, opts ...Option) *Router {
	r := &Router{
		sessions:  sessions,
		projects:  projects,
		workspace: ws,
		auth:      auth,
		notifier:  notifier,
		logger:    slog.New(slog.DiscardHandler),
		baseCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle dispatches req and records it.
func (r *Router) Handle(ctx context.Context, req message.Request, reply message.Reply) {
	metrics.RecordMessage(req.Type())
	r.logger.Debug("panel message", "type", req.Type())
	req.Dispatch(ctx, r, reply)
}

func (r *Router) GetUserData(ctx context.Context, _ message.GetUserData, reply message.Reply) {
	u, err := r.sessions.Get(ctx)
	if err != nil {
		r.fail(message.TypeGetUserData, "read session", err)
		reply(message.UserDataNotFound{})
		return
	}
	if u == nil {
		reply(message.UserDataNotFound{})
		return
	}
	reply(message.UserData{Value: *u})
}

// AuthenticateUser starts the login flow in the background. The panel learns
// about the result through the reload the auth server triggers.
func (r *Router) AuthenticateUser(_ context.Context, _ message.AuthenticateUser, _ message.Reply) {
	go func() {
		if _, err := r.auth.Authenticate(r.baseCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				r.logger.Info("authentication canceled")
				return
			}
			r.fail(message.TypeAuthenticateUser, "authenticate", err)
			r.notifier.Notify(message.Error(MsgAuthFailed))
		}
	}()
}

func (r *Router) Logout(ctx context.Context, _ message.Logout, reply message.Reply) {
	if err := r.sessions.Clear(ctx); err != nil {
		r.fail(message.TypeLogout, "clear session", err)
		r.notifier.Notify(message.Error(MsgLogoutFailed))
		return
	}
	reply(message.UserDataNotFound{})
}

func (r *Router) GetProjects(ctx context.Context, _ message.GetProjects, reply message.Reply) {
	u, err := r.sessions.Get(ctx)
	if err != nil {
		r.fail(message.TypeGetProjects, "read session", err)
		r.notifier.Notify(message.Error(MsgLoadFailed))
		return
	}
	if u == nil {
		return
	}

	projects, err := r.projects.GetProjects(ctx, u.UID)
	if err != nil {
		r.fail(message.TypeGetProjects, "list projects", err)
		r.notifier.Notify(message.Error(MsgLoadFailed))
		return
	}
	reply(message.Projects{Value: projects})
}

func (r *Router) SaveProject(ctx context.Context, _ message.SaveProject, reply message.Reply) {
	u, err := r.sessions.Get(ctx)
	if err != nil {
		r.fail(message.TypeSaveProject, "read session", err)
		r.notifier.Notify(message.Error(MsgSaveFailed))
		return
	}
	if u == nil {
		r.notifier.Notify(message.Error(MsgNotLoggedIn))
		return
	}

	name, ok := r.workspace.Name()
	if !ok {
		r.notifier.Notify(message.Error(MsgNoWorkspace))
		return
	}
	files, err := r.workspace.ListFiles(ctx)
	if err != nil {
		r.fail(message.TypeSaveProject, "list files", err)
		r.notifier.Notify(message.Error(MsgSaveFailed))
		return
	}

	id, err := r.projects.SaveProject(ctx, name, files, u.UID)
	if err != nil {
		r.fail(message.TypeSaveProject, "save project", err)
		r.notifier.Notify(message.Error(MsgSaveFailed))
		return
	}

	r.logger.Info("project saved", "id", id, "name", name, "files", len(files))
	reply(message.ProjectSaved{})
	r.notifier.Notify(message.Info(MsgProjectSaved))
}

// UpdateProject overwrites the snapshot of req.ProjectID. Ownership is not
// checked here.
func (r *Router) UpdateProject(ctx context.Context, req message.UpdateProject, reply message.Reply) {
	if _, ok := r.workspace.Name(); !ok {
		r.notifier.Notify(message.Error(MsgNoWorkspace))
		return
	}
	files, err := r.workspace.ListFiles(ctx)
	if err != nil {
		r.fail(message.TypeUpdateProject, "list files", err)
		r.notifier.Notify(message.Error(MsgUpdateFailed))
		return
	}

	if err := r.projects.UpdateProject(ctx, req.ProjectID, files); err != nil {
		r.fail(message.TypeUpdateProject, "update project", err)
		r.notifier.Notify(message.Error(MsgUpdateFailed))
		return
	}

	r.logger.Info("project updated", "id", req.ProjectID, "files", len(files))
	reply(message.ProjectSaved{})
	r.notifier.Notify(message.Info(MsgProjectUpdated))
}

func (r *Router) DeleteProject(ctx context.Context, req message.DeleteProject, reply message.Reply) {
	if err := r.projects.DeleteProject(ctx, req.ProjectID); err != nil {
		r.fail(message.TypeDeleteProject, "delete project", err)
		r.notifier.Notify(message.Error(MsgDeleteFailed))
		return
	}

	r.logger.Info("project deleted", "id", req.ProjectID)
	reply(message.ProjectDeleted{})
	r.notifier.Notify(message.Info(MsgProjectDeleted))
}

func (r *Router) GetCurrentWorkspace(_ context.Context, _ message.GetCurrentWorkspace, reply message.Reply) {
	name, ok := r.workspace.Name()
	if !ok {
		reply(message.CurrentWorkspace{})
		return
	}
	reply(message.CurrentWorkspace{Value: &name})
}

func (r *Router) OnInfo(_ context.Context, req message.OnInfo, _ message.Reply) {
	if req.Value != "" {
		r.notifier.Notify(message.Info(req.Value))
	}
}

func (r *Router) OnError(_ context.Context, req message.OnError, _ message.Reply) {
	if req.Value != "" {
		r.notifier.Notify(message.Error(req.Value))
	}
}

func (r *Router) fail(msgType, op string, err error) {
	metrics.RecordMessageFailure(msgType)
	r.logger.Error("panel request failed", "type", msgType, "op", op, "error", err)
}
