package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `filetracker keeps named snapshots ("projects") of the file listing of the open workspace, owned by the logged-in user.

- whoami: the logged-in user. Every other tool fails with NOT_LOGGED_IN until someone runs "filetracker login".
- list_projects: the user's projects with their file counts.
- snapshot_workspace: saves the workspace as a new project, or updates the project named after the workspace if one exists.
- delete_project: removes one of the user's projects by id.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "filetracker://docs/snapshots",
		Name:        "snapshots",
		Title:       "How snapshots work",
		Description: "What a project snapshot records and how the workspace is matched",
		Content: `# Snapshots

A snapshot lists every file and directory below the first workspace folder.
Entries named node_modules or .git are skipped with everything below them.
Each entry records name, path, type (file or directory) and lastModified,
which is the time of the scan in Unix milliseconds.

The workspace is matched to a project by name: the project whose name equals
the workspace folder name is updated, otherwise a new project is created.
Two projects may share a name; the first match wins.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
