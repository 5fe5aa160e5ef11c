package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eufiscalizo-api/internal/models"
	"github.com/noah-isme/eufiscalizo-api/pkg/config"
	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Store:   config.StoreConfig{Driver: driver, SeedFixtures: true},
		SQLite:  config.SQLiteConfig{Path: filepath.Join(dir, "db", "eufiscalizo.db")},
		Session: config.SessionConfig{Driver: config.SessionFile, Dir: filepath.Join(dir, "session")},
	}
}

func TestOpenMemorySeedsFixtures(t *testing.T) {
	stores, err := Open(context.Background(), testConfig(t, config.StoreMemory), nil)
	require.NoError(t, err)
	defer stores.Close()

	users, err := stores.Users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	items, err := stores.Inspections.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "3", items[0].ID)
}

func TestOpenSQLiteSeedsOnceAndPersists(t *testing.T) {
	cfg := testConfig(t, config.StoreSQLite)
	ctx := context.Background()

	stores, err := Open(ctx, cfg, nil)
	require.NoError(t, err)

	user, err := stores.Users.FindByEmail(ctx, "joao@student.univ.br")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)

	updated, err := stores.Inspections.UpdateWhere(ctx, "1", func(in *models.Inspection) error {
		in.Status = models.StatusResolved
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	require.NoError(t, stores.Close())

	reopened, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	items, err := reopened.Inspections.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	got, err := reopened.Inspections.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)

	resolved, err := reopened.Inspections.Get(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, resolved.Feedback)
	assert.Equal(t, 5, resolved.Feedback.Rating)
}

func TestSessionsFileDriver(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	stores, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	sessions, err := stores.Sessions(cfg, nil)
	require.NoError(t, err)

	_, err = sessions.Load(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrSessionMissing)

	require.NoError(t, sessions.Save(context.Background(), []byte(`{"id":"1"}`)))
	payload, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(payload))
}

func TestSessionsRedisDriverRequiresRedis(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	stores, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)

	cfg.Session.Driver = config.SessionRedis
	_, err = stores.Sessions(cfg, nil)
	assert.Error(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, "mongo"), nil)
	assert.Error(t, err)
}
