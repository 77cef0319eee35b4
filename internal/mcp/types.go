package mcp

type WhoamiParams struct{}

type WhoamiResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type ListProjectsParams struct{}

type ProjectSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FileCount int    `json:"fileCount"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Current   bool   `json:"current"`
}

type ListProjectsResponse struct {
	Workspace string           `json:"workspace,omitempty"`
	Projects  []ProjectSummary `json:"projects"`
}

type SnapshotWorkspaceParams struct{}

type SnapshotWorkspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Action    string `json:"action"`
	FileCount int    `json:"fileCount"`
}

type DeleteProjectParams struct {
	ID string `json:"id" jsonschema:"id of the project to delete"`
}

type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
