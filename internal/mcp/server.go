package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/domain/user"
)

// SessionReader returns the logged-in user, or nil.
type SessionReader interface {
	Get(ctx context.Context) (*user.User, error)
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
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

// Config contains server configuration.
type Config struct {
	Sessions  SessionReader
	Projects  ProjectService
	Workspace Workspace
	Version   string
	Logger    *slog.Logger
}

// NewServer creates an MCP server exposing the tracker tools.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "filetracker",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Sessions, cfg.Projects, cfg.Workspace))

	return server
}

// Run serves MCP over stdio until ctx is done or the client disconnects.
func Run(ctx context.Context, server *sdkmcp.Server) error {
	return server.Run(ctx, &sdkmcp.StdioTransport{})
}
