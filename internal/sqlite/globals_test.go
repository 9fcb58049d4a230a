package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

func TestGlobalsGetSeeded(t *testing.T) {
	db := NewTestDB(t)
	repo := NewGlobalsRepository(db)

	g, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, g.Administrator)
	require.Empty(t, g.Reporter)
	require.False(t, g.Paused)
}

func TestGlobalsBootstrap(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGlobalsRepository(db)

	require.NoError(t, repo.Bootstrap(ctx, "alice", "rex"))
	g, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", g.Administrator)
	require.Equal(t, "rex", g.Reporter)

	// A second bootstrap never overwrites live roles.
	require.NoError(t, repo.Bootstrap(ctx, "eve", "mallory"))
	g, err = repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", g.Administrator)
	require.Equal(t, "rex", g.Reporter)
}

func TestGlobalsSetRoles(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGlobalsRepository(db)
	require.NoError(t, repo.Bootstrap(ctx, "alice", "rex"))

	require.NoError(t, repo.SetAdministrator(ctx, "bob", testEvent(vault.EventAdministratorChanged)))
	require.NoError(t, repo.SetReporter(ctx, "rhea", testEvent(vault.EventReporterChanged)))

	g, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "bob", g.Administrator)
	require.Equal(t, "rhea", g.Reporter)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind IN ('administrator_changed', 'reporter_changed')`).Scan(&count))
	require.Equal(t, 2, count)
}

func TestGlobalsSetPaused(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewGlobalsRepository(db)

	require.NoError(t, repo.SetPaused(ctx, true, testEvent(vault.EventGlobalPaused)))
	g, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, g.Paused)

	require.NoError(t, repo.SetPaused(ctx, false, testEvent(vault.EventGlobalUnpaused)))
	g, err = repo.Get(ctx)
	require.NoError(t, err)
	require.False(t, g.Paused)
}
