// Package workspace enumerates the files of the open workspace.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/metrics"
)

// skipped names are pruned with their whole subtree at any depth.
var skipped = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Enumerator lists the first workspace folder.
type Enumerator struct {
	folders []string
	now     func() time.Time
}

// New creates an enumerator over the open workspace folders. Only the first
// folder is ever scanned. Relative folders are resolved against the working
// directory.
func New(folders []string) *Enumerator {
	resolved := make([]string, 0, len(folders))
	for _, f := range folders {
		if f == "" {
			resolved = append(resolved, f)
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		resolved = append(resolved, f)
	}
	return &Enumerator{folders: resolved, now: time.Now}
}

// Root returns the scanned folder, if any.
func (e *Enumerator) Root() (string, bool) {
	if len(e.folders) == 0 || e.folders[0] == "" {
		return "", false
	}
	return e.folders[0], true
}

// Name returns the name of the first workspace folder.
func (e *Enumerator) Name() (string, bool) {
	root, ok := e.Root()
	if !ok {
		return "", false
	}
	return filepath.Base(filepath.Clean(root)), true
}

// ListFiles walks the first workspace folder depth-first and records every
// file and directory below it. lastModified is the time of the scan, not the
// entry's modification time. Symbolic links are recorded but not followed.
func (e *Enumerator) ListFiles(ctx context.Context) ([]project.ProjectFile, error) {
	files := []project.ProjectFile{}
	root, ok := e.Root()
	if !ok {
		return files, nil
	}

	scannedAt := e.now().UnixMilli()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}
		if skipped[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entryType := project.TypeFile
		if d.IsDir() {
			entryType = project.TypeDirectory
		}
		files = append(files, project.ProjectFile{
			Name:         d.Name(),
			Path:         path,
			Type:         entryType,
			LastModified: scannedAt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan workspace %s: %w", root, err)
	}

	metrics.ObserveWorkspaceScan(len(files))
	return files, nil
}
