package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/filetracker/internal/domain/project"
)

var (
	// ErrNotLoggedIn indicates no session user is stored.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNoWorkspace indicates no workspace folder is open.
	ErrNoWorkspace = errors.New("no workspace is currently open")
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors are
// returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		return &APIError{Code: "NOT_LOGGED_IN", Message: "no user is logged in", RecoveryHint: "Run filetracker login"}
	case errors.Is(err, ErrNoWorkspace):
		return &APIError{Code: "NO_WORKSPACE", Message: "no workspace is currently open", RecoveryHint: "Start with a folder argument"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return err
	}
}
