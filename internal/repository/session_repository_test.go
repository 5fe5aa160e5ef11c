package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/storage"
)

func TestFileSessionRepositoryLifecycle(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewFileSessionRepository(store)
	ctx := context.Background()

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)

	require.NoError(t, repo.Save(ctx, []byte(`{"id":"1"}`)))
	data, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(data))

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
}

func TestRedisSessionRepositoryWithoutClient(t *testing.T) {
	repo := NewRedisSessionRepository(nil, "test", nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []byte("x")))
	_, err := repo.Load(ctx)
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)
	assert.NoError(t, repo.Clear(ctx))
	assert.NoError(t, repo.Close())
}
