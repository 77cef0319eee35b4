package message

import (
	"encoding/json"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
)

// Response and event type tags sent by the host.
const (
	TypeUserData         = "userData"
	TypeUserDataNotFound = "userDataNotFound"
	TypeProjects         = "projects"
	TypeProjectSaved     = "projectSaved"
	TypeProjectDeleted   = "projectDeleted"
	TypeCurrentWorkspace = "currentWorkspace"
	TypeNotification     = "notification"
	TypeReload           = "reload"
	TypeRender           = "render"
)

// Notification levels.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// ResponseHandler handles every response variant.
type ResponseHandler interface {
	UserData(m UserData)
	UserDataNotFound(m UserDataNotFound)
	Projects(m Projects)
	ProjectSaved(m ProjectSaved)
	ProjectDeleted(m ProjectDeleted)
	CurrentWorkspace(m CurrentWorkspace)
	Notification(m Notification)
	Reload(m Reload)
	Render(m Render)
}

// Response is a message from the host to the panel.
type Response interface {
	Type() string
	Accept(h ResponseHandler)
	frame() Frame
}

// Frame is the wire shape of every response.
type Frame struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Level string `json:"level,omitempty"`
}

type UserData struct {
	Value user.User
}

type UserDataNotFound struct{}

type Projects struct {
	Value []project.Project
}

type ProjectSaved struct{}

type ProjectDeleted struct{}

// CurrentWorkspace carries the workspace name; Value is nil when no workspace
// is open.
type CurrentWorkspace struct {
	Value *string
}

type Notification struct {
	Level string
	Value string
}

// Reload asks the panel to rebuild itself from scratch.
type Reload struct{}

// Render carries the panel HTML produced by the host.
type Render struct {
	HTML string
}

func (UserData) Type() string         { return TypeUserData }
func (UserDataNotFound) Type() string { return TypeUserDataNotFound }
func (Projects) Type() string         { return TypeProjects }
func (ProjectSaved) Type() string     { return TypeProjectSaved }
func (ProjectDeleted) Type() string   { return TypeProjectDeleted }
func (CurrentWorkspace) Type() string { return TypeCurrentWorkspace }
func (Notification) Type() string     { return TypeNotification }
func (Reload) Type() string           { return TypeReload }
func (Render) Type() string           { return TypeRender }

func (m UserData) Accept(h ResponseHandler)         { h.UserData(m) }
func (m UserDataNotFound) Accept(h ResponseHandler) { h.UserDataNotFound(m) }
func (m Projects) Accept(h ResponseHandler)         { h.Projects(m) }
func (m ProjectSaved) Accept(h ResponseHandler)     { h.ProjectSaved(m) }
func (m ProjectDeleted) Accept(h ResponseHandler)   { h.ProjectDeleted(m) }
func (m CurrentWorkspace) Accept(h ResponseHandler) { h.CurrentWorkspace(m) }
func (m Notification) Accept(h ResponseHandler)     { h.Notification(m) }
func (m Reload) Accept(h ResponseHandler)           { h.Reload(m) }
func (m Render) Accept(h ResponseHandler)           { h.Render(m) }

func (m UserData) frame() Frame       { return Frame{Type: TypeUserData, Value: m.Value} }
func (UserDataNotFound) frame() Frame { return Frame{Type: TypeUserDataNotFound} }
func (ProjectSaved) frame() Frame     { return Frame{Type: TypeProjectSaved} }
func (ProjectDeleted) frame() Frame   { return Frame{Type: TypeProjectDeleted} }
func (Reload) frame() Frame           { return Frame{Type: TypeReload} }
func (m Render) frame() Frame         { return Frame{Type: TypeRender, Value: m.HTML} }
func (m Notification) frame() Frame {
	return Frame{Type: TypeNotification, Level: m.Level, Value: m.Value}
}

func (m Projects) frame() Frame {
	value := m.Value
	if value == nil {
		value = []project.Project{}
	}
	return Frame{Type: TypeProjects, Value: value}
}

func (m CurrentWorkspace) frame() Frame {
	if m.Value == nil {
		return Frame{Type: TypeCurrentWorkspace}
	}
	return Frame{Type: TypeCurrentWorkspace, Value: *m.Value}
}

// EncodeResponse returns the wire form of resp.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp.frame())
}

// Info builds an informational notification.
func Info(msg string) Notification {
	return Notification{Level: LevelInfo, Value: msg}
}

// Error builds an error notification.
func Error(msg string) Notification {
	return Notification{Level: LevelError, Value: msg}
}
