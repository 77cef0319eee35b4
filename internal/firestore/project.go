// Package firestore stores project snapshots in a Cloud Firestore collection,
// the remote document store the panel was designed against.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rpggio/filetracker/internal/domain/project"
	"github.com/rpggio/filetracker/internal/repository"
)

// Collection is the Firestore collection holding project documents.
const Collection = "projects"

// NewClient creates a Firestore client. An empty credentialsFile falls back to
// application default credentials (or FIRESTORE_EMULATOR_HOST).
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}

// ProjectRepository implements project.Repository over a Firestore collection.
type ProjectRepository struct {
	client *firestore.Client
}

// NewProjectRepository creates a repository over client.
func NewProjectRepository(client *firestore.Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

func (r *ProjectRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(Collection)
}

// Create adds a document; Firestore assigns the id.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) (string, error) {
	ref, _, err := r.collection().Add(ctx, proj)
	if err != nil {
		return "", fmt.Errorf("add project document: %w", err)
	}
	proj.ID = ref.ID
	return ref.ID, nil
}

// UpdateFiles overwrites files and updatedAt of document id.
func (r *ProjectRepository) UpdateFiles(ctx context.Context, id string, files []project.ProjectFile, updatedAt int64) error {
	_, err := r.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "files", Value: files},
		{Path: "updatedAt", Value: updatedAt},
	})
	if status.Code(err) == codes.NotFound {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update project document: %w", err)
	}
	return nil
}

// ListByUser queries documents whose userId equals userID.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]project.Project, error) {
	iter := r.collection().Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var projects []project.Project
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query project documents: %w", err)
		}
		var proj project.Project
		if err := doc.DataTo(&proj); err != nil {
			return nil, fmt.Errorf("decode project document %s: %w", doc.Ref.ID, err)
		}
		proj.ID = doc.Ref.ID
		projects = append(projects, proj)
	}
	return projects, nil
}

// Delete removes document id; deleting a missing document succeeds.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete project document: %w", err)
	}
	return nil
}
