package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
	"github.com/covenant-ledger/covenant/internal/repository"
)

func seedBountyPool(t *testing.T, db *DB, id int64, amount uint64) {
	t.Helper()
	_, err := db.Exec(`UPDATE projects SET bounty_pool_balance = ? WHERE id = ?`, amount, id)
	require.NoError(t, err)
}

func TestClaimAllocate(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	projects := NewProjectRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 1000)

	require.NoError(t, repo.Allocate(ctx, id, "rita", 400, testEvent(vault.EventBountyAllocated)))

	claim, err := repo.Get(ctx, id, "rita")
	require.NoError(t, err)
	require.Equal(t, uint64(400), claim.Amount)

	proj, err := projects.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint64(600), proj.BountyPool)

	// Allocations accumulate.
	require.NoError(t, repo.Allocate(ctx, id, "rita", 100, testEvent(vault.EventBountyAllocated)))
	claim, err = repo.Get(ctx, id, "rita")
	require.NoError(t, err)
	require.Equal(t, uint64(500), claim.Amount)
}

func TestClaimAllocateGuards(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 100)

	err := repo.Allocate(ctx, id, "rita", 200, testEvent(vault.EventBountyAllocated))
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)

	err = repo.Allocate(ctx, 42, "rita", 10, testEvent(vault.EventBountyAllocated))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimRedeem(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 1000)
	require.NoError(t, repo.Allocate(ctx, id, "rita", 400, testEvent(vault.EventBountyAllocated)))

	var transferred uint64
	evt := testEvent(vault.EventBountyClaimed)
	amount, err := repo.Redeem(ctx, id, "rita", evt, func(_ context.Context, a uint64) error {
		transferred = a
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(400), amount)
	require.Equal(t, uint64(400), transferred)
	require.Equal(t, uint64(400), evt.Amount, "redeem event carries the zeroed amount")

	// The entry is spent; a second redeem finds nothing.
	_, err = repo.Redeem(ctx, id, "rita", testEvent(vault.EventBountyClaimed), nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimRedeemNoEntry(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)

	_, err := repo.Redeem(ctx, id, "nobody", testEvent(vault.EventBountyClaimed), nil)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimRedeemAbortsOnTransferFailure(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 1000)
	require.NoError(t, repo.Allocate(ctx, id, "rita", 400, testEvent(vault.EventBountyAllocated)))

	_, err := repo.Redeem(ctx, id, "rita", testEvent(vault.EventBountyClaimed), func(context.Context, uint64) error {
		return repository.ErrInsufficientBalance
	})
	require.ErrorIs(t, err, repository.ErrInsufficientBalance)

	claim, err := repo.Get(ctx, id, "rita")
	require.NoError(t, err)
	require.Equal(t, uint64(400), claim.Amount, "zeroing rolled back after failed transfer")
}

func TestClaimListByProject(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 1000)

	require.NoError(t, repo.Allocate(ctx, id, "zoe", 100, testEvent(vault.EventBountyAllocated)))
	require.NoError(t, repo.Allocate(ctx, id, "abe", 200, testEvent(vault.EventBountyAllocated)))

	claims, err := repo.ListByProject(ctx, id)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	require.Equal(t, "abe", claims[0].Claimant)
	require.Equal(t, "zoe", claims[1].Claimant)

	_, err = repo.Get(ctx, id, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClaimUpdatedAt(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewClaimRepository(db)
	id := createTestProject(t, db, 10000)
	seedBountyPool(t, db, id, 1000)

	before := time.Now().Add(-time.Second)
	require.NoError(t, repo.Allocate(ctx, id, "rita", 100, testEvent(vault.EventBountyAllocated)))

	claim, err := repo.Get(ctx, id, "rita")
	require.NoError(t, err)
	require.True(t, claim.UpdatedAt.After(before))
}
