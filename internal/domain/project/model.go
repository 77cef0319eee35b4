package project

// FileType distinguishes files from directories in a snapshot.
type FileType string

const (
	TypeFile      FileType = "file"
	TypeDirectory FileType = "directory"
)

// ProjectFile is one entry of a workspace snapshot.
type ProjectFile struct {
	Name         string   `json:"name" firestore:"name"`
	Path         string   `json:"path" firestore:"path"`
	Type         FileType `json:"type" firestore:"type"`
	LastModified int64    `json:"lastModified" firestore:"lastModified"`
}

// Project is a named snapshot of a workspace's file listing owned by a user.
// Timestamps are Unix milliseconds.
type Project struct {
	ID        string        `json:"id" firestore:"-"`
	Name      string        `json:"name" firestore:"name"`
	Files     []ProjectFile `json:"files" firestore:"files"`
	UserID    string        `json:"userId" firestore:"userId"`
	CreatedAt int64         `json:"createdAt" firestore:"createdAt"`
	UpdatedAt int64         `json:"updatedAt" firestore:"updatedAt"`
}
