// Package panel keeps the state of one open panel and renders it.
//
// State is rebuilt purely from the responses the panel receives; nothing is
// persisted between connections.
package panel

import (
	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
	"github.com/rpggio/filetracker/internal/message"
)

// MountRequests is the burst a panel issues once when it opens.
func MountRequests() []message.Request {
	return []message.Request{message.GetUserData{}, message.GetCurrentWorkspace{}}
}

// State is owned by a single connection and is not safe for concurrent use.
type State struct {
	loading   bool
	user      *user.User
	workspace *string
	projects  []project.Project
}

// NewState returns the state of a panel that has not heard back yet.
func NewState() *State {
	return &State{loading: true}
}

// Apply folds resp into the state and returns the requests the panel issues
// in reaction to it.
func (s *State) Apply(resp message.Response) []message.Request {
	a := applier{state: s}
	resp.Accept(&a)
	return a.followUps
}

type applier struct {
	state     *State
	followUps []message.Request
}

var _ message.ResponseHandler = (*applier)(nil)

func (a *applier) UserData(m message.UserData) {
	u := m.Value
	a.state.user = &u
	a.state.loading = false
	a.followUps = append(a.followUps, message.GetProjects{})
}

func (a *applier) UserDataNotFound(message.UserDataNotFound) {
	a.state.user = nil
	a.state.projects = nil
	a.state.loading = false
}

func (a *applier) Projects(m message.Projects) {
	a.state.projects = m.Value
}

func (a *applier) ProjectSaved(message.ProjectSaved) {
	a.followUps = append(a.followUps, message.GetProjects{})
}

func (a *applier) ProjectDeleted(message.ProjectDeleted) {
	a.followUps = append(a.followUps, message.GetProjects{})
}

func (a *applier) CurrentWorkspace(m message.CurrentWorkspace) {
	a.state.workspace = m.Value
}

func (a *applier) Notification(message.Notification) {}
func (a *applier) Reload(message.Reload)             {}
func (a *applier) Render(message.Render)             {}
