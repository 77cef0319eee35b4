package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, h *Handler) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "whoami",
		Description: "Show the logged-in user",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ WhoamiParams) (*sdkmcp.CallToolResult, WhoamiResponse, error) {
		return toolResult(h.Whoami(ctx))
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List the logged-in user's projects",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResponse, error) {
		return toolResult(h.ListProjects(ctx))
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "snapshot_workspace",
		Description: "Save the open workspace's file listing, updating the project named after the workspace if it exists",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ SnapshotWorkspaceParams) (*sdkmcp.CallToolResult, SnapshotWorkspaceResponse, error) {
		return toolResult(h.SnapshotWorkspace(ctx))
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete one of the logged-in user's projects by id",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, params DeleteProjectParams) (*sdkmcp.CallToolResult, DeleteProjectResponse, error) {
		return toolResult(h.DeleteProject(ctx, params))
	})
}

// toolResult lets the SDK build the result from the structured output.
func toolResult[Out any](out *Out, err error) (*sdkmcp.CallToolResult, Out, error) {
	var zero Out
	if err != nil {
		return nil, zero, err
	}
	return nil, *out, nil
}
