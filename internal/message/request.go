// Package message defines the typed protocol exchanged between the panel and
// the host. Requests and responses are closed sets: each variant is routed
// through a handler interface with one method per variant, so adding a
// variant without handling it does not compile.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Request type tags sent by the panel.
const (
	TypeGetUserData         = "getUserData"
	TypeAuthenticateUser    = "authenticateUser"
	TypeLogout              = "logout"
	TypeGetProjects         = "getProjects"
	TypeSaveProject         = "saveProject"
	TypeUpdateProject       = "updateProject"
	TypeDeleteProject       = "deleteProject"
	TypeGetCurrentWorkspace = "getCurrentWorkspace"
	TypeOnInfo              = "onInfo"
	TypeOnError             = "onError"
)

var (
	// ErrUnknownType indicates a frame whose type tag is not a known request.
	ErrUnknownType = errors.New("unknown message type")
	// ErrMissingField indicates a request without a required payload field.
	ErrMissingField = errors.New("missing message field")
)

// Reply delivers a response to the panel that sent the request.
type Reply func(Response)

// Handler handles every request variant.
type Handler interface {
	GetUserData(ctx context.Context, req GetUserData, reply Reply)
	AuthenticateUser(ctx context.Context, req AuthenticateUser, reply Reply)
	Logout(ctx context.Context, req Logout, reply Reply)
	GetProjects(ctx context.Context, req GetProjects, reply Reply)
	SaveProject(ctx context.Context, req SaveProject, reply Reply)
	UpdateProject(ctx context.Context, req UpdateProject, reply Reply)
	DeleteProject(ctx context.Context, req DeleteProject, reply Reply)
	GetCurrentWorkspace(ctx context.Context, req GetCurrentWorkspace, reply Reply)
	OnInfo(ctx context.Context, req OnInfo, reply Reply)
	OnError(ctx context.Context, req OnError, reply Reply)
}

// Request is a message from the panel to the host.
type Request interface {
	Type() string
	Dispatch(ctx context.Context, h Handler, reply Reply)
}

type GetUserData struct{}
type AuthenticateUser struct{}
type Logout struct{}
type GetProjects struct{}
type SaveProject struct{}
type GetCurrentWorkspace struct{}

type UpdateProject struct {
	ProjectID string
}

type DeleteProject struct {
	ProjectID string
}

type OnInfo struct {
	Value string
}

type OnError struct {
	Value string
}

func (GetUserData) Type() string         { return TypeGetUserData }
func (AuthenticateUser) Type() string    { return TypeAuthenticateUser }
func (Logout) Type() string              { return TypeLogout }
func (GetProjects) Type() string         { return TypeGetProjects }
func (SaveProject) Type() string         { return TypeSaveProject }
func (UpdateProject) Type() string       { return TypeUpdateProject }
func (DeleteProject) Type() string       { return TypeDeleteProject }
func (GetCurrentWorkspace) Type() string { return TypeGetCurrentWorkspace }
func (OnInfo) Type() string              { return TypeOnInfo }
func (OnError) Type() string             { return TypeOnError }

func (m GetUserData) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.GetUserData(ctx, m, reply)
}

func (m AuthenticateUser) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.AuthenticateUser(ctx, m, reply)
}

func (m Logout) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.Logout(ctx, m, reply)
}

func (m GetProjects) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.GetProjects(ctx, m, reply)
}

func (m SaveProject) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.SaveProject(ctx, m, reply)
}

func (m UpdateProject) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.UpdateProject(ctx, m, reply)
}

func (m DeleteProject) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.DeleteProject(ctx, m, reply)
}

func (m GetCurrentWorkspace) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.GetCurrentWorkspace(ctx, m, reply)
}

func (m OnInfo) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.OnInfo(ctx, m, reply)
}

func (m OnError) Dispatch(ctx context.Context, h Handler, reply Reply) {
	h.OnError(ctx, m, reply)
}

// requestFrame is the wire shape of every request.
type requestFrame struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId,omitempty"`
	Value     string `json:"value,omitempty"`
}

// DecodeRequest parses a JSON request frame into its variant.
func DecodeRequest(data []byte) (Request, error) {
	var frame requestFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}

	switch frame.Type {
	case TypeGetUserData:
		return GetUserData{}, nil
	case TypeAuthenticateUser:
		return AuthenticateUser{}, nil
	case TypeLogout:
		return Logout{}, nil
	case TypeGetProjects:
		return GetProjects{}, nil
	case TypeSaveProject:
		return SaveProject{}, nil
	case TypeUpdateProject:
		if strings.TrimSpace(frame.ProjectID) == "" {
			return nil, fmt.Errorf("%w: %s requires projectId", ErrMissingField, frame.Type)
		}
		return UpdateProject{ProjectID: frame.ProjectID}, nil
	case TypeDeleteProject:
		if strings.TrimSpace(frame.ProjectID) == "" {
			return nil, fmt.Errorf("%w: %s requires projectId", ErrMissingField, frame.Type)
		}
		return DeleteProject{ProjectID: frame.ProjectID}, nil
	case TypeGetCurrentWorkspace:
		return GetCurrentWorkspace{}, nil
	case TypeOnInfo:
		return OnInfo{Value: frame.Value}, nil
	case TypeOnError:
		return OnError{Value: frame.Value}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, frame.Type)
	}
}

// EncodeRequest returns the wire form of req.
func EncodeRequest(req Request) ([]byte, error) {
	frame := requestFrame{Type: req.Type()}
	switch m := req.(type) {
	case UpdateProject:
		frame.ProjectID = m.ProjectID
	case DeleteProject:
		frame.ProjectID = m.ProjectID
	case OnInfo:
		frame.Value = m.Value
	case OnError:
		frame.Value = m.Value
	}
	return json.Marshal(frame)
}
