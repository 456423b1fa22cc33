package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/profile"
)

func openTestSQLite(t *testing.T) *SQLProfileRepository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "profiles.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLProfileRepository_SaveAndGet(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, profile.ErrNotFound)

	p := &profile.Profile{ID: "p1", Nickname: "Nova", Class: "sniper", TotalKills: 3, Matches: 1, UpdatedAt: time.Now().UTC()}
	require.NoError(t, repo.Save(ctx, p))

	p.TotalKills = 4
	p.Matches = 2
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Nova", got.Nickname)
	assert.Equal(t, "sniper", got.Class)
	assert.Equal(t, 4, got.TotalKills)
	assert.Equal(t, 2, got.Matches)
}

func TestSQLProfileRepository_BacksService(t *testing.T) {
	repo := openTestSQLite(t)
	service := profile.NewService(repo, zerolog.Nop())
	ctx := context.Background()

	created := service.GetOrCreate(ctx, "", "Nova", "")
	_, err := service.Credit(ctx, created.ID, 2, 1)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalKills)
	assert.Equal(t, 1, stored.TotalDeaths)
	assert.Equal(t, config.DefaultClass, stored.Class)
}

func TestOpenProfileStore(t *testing.T) {
	ctx := context.Background()

	store, err := OpenProfileStore(ctx, &config.Config{ProfileBackend: config.BackendMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &profile.MemoryStore{}, store)

	store, err = OpenProfileStore(ctx, &config.Config{
		ProfileBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "p.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &SQLProfileRepository{}, store)
	require.NoError(t, store.Close())

	_, err = OpenProfileStore(ctx, &config.Config{ProfileBackend: "etcd"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestProfileKey(t *testing.T) {
	assert.Equal(t, "profile:abc", profileKey("abc"))
}
