package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/filetracker/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestKVRepository_PutGetDelete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewKVRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "userData")
	require.Equal(t, repository.ErrNotFound, err)

	require.NoError(t, repo.Put(ctx, "userData", `{"uid":"u1"}`))
	value, err := repo.Get(ctx, "userData")
	require.NoError(t, err)
	require.Equal(t, `{"uid":"u1"}`, value)

	// Overwrite
	require.NoError(t, repo.Put(ctx, "userData", `{"uid":"u2"}`))
	value, err = repo.Get(ctx, "userData")
	require.NoError(t, err)
	require.Equal(t, `{"uid":"u2"}`, value)

	require.NoError(t, repo.Delete(ctx, "userData"))
	_, err = repo.Get(ctx, "userData")
	require.Equal(t, repository.ErrNotFound, err)

	// Deleting again is fine
	require.NoError(t, repo.Delete(ctx, "userData"))
}
