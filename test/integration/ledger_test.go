package integration_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
	"github.com/covenant-ledger/covenant/internal/sqlite"
)

const (
	admin    = "alice"
	reporter = "rex"
	owner    = "omar"
	hunter   = "rita"
	custody  = "vault:custody"

	ownerFunds = uint64(1_000_000)
)

type testEnv struct {
	db   *sqlite.DB
	bank *sqlite.TokenBank
	svc  *vault.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	bank := sqlite.NewTokenBank(db)
	require.NoError(t, bank.Mint(ctx, owner, ownerFunds))

	globalsRepo := sqlite.NewGlobalsRepository(db)
	require.NoError(t, globalsRepo.Bootstrap(ctx, admin, reporter))

	svc := vault.NewService(
		sqlite.NewProjectRepository(db),
		sqlite.NewClaimRepository(db),
		globalsRepo,
		sqlite.NewEventRepository(db),
		bank,
		nil,
		vault.Options{CustodyAccount: custody},
	)
	return &testEnv{db: db, bank: bank, svc: svc}
}

func (env *testEnv) balance(t *testing.T, address string) uint64 {
	t.Helper()
	bal, err := env.bank.Balance(context.Background(), address)
	require.NoError(t, err)
	return bal
}

// requireConserved checks that every unit minted at setup is still accounted
// for across the token accounts and that custody holds exactly the sum of the
// three pools plus the outstanding claim entries, which are allocated out of
// the bounty pools but stay in custody until redeemed.
func (env *testEnv) requireConserved(t *testing.T, projectIDs ...int64) {
	t.Helper()
	ctx := context.Background()

	var pooled uint64
	for _, id := range projectIDs {
		balances, err := env.svc.GetBalances(ctx, id)
		require.NoError(t, err)
		pooled += balances.Escrow + balances.Reward + balances.BountyPool
	}
	var outstanding uint64
	require.NoError(t, env.db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM claims`).Scan(&outstanding))
	require.Equal(t, pooled+outstanding, env.balance(t, custody), "custody must hold exactly the pooled collateral plus outstanding claims")

	var total uint64
	require.NoError(t, env.db.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM token_accounts`).Scan(&total))
	require.Equal(t, ownerFunds, total, "no value minted or burned after setup")
}

func TestSettlementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 10000,
	})
	require.NoError(t, err)
	require.Equal(t, ownerFunds-10000, env.balance(t, owner))
	require.Equal(t, uint64(10000), env.balance(t, custody))
	env.requireConserved(t, proj.ID)

	// Passing report moves 5% of escrow into the reward pool.
	rec, err := env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.NoError(t, err)
	require.True(t, rec.Passed)
	require.Equal(t, uint64(500), rec.AmountMoved)
	require.Equal(t, vault.Balances{Escrow: 9500, Reward: 500}, rec.Balances)

	// Failing report moves 5% of the remaining escrow into the bounty pool.
	rec, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 40})
	require.NoError(t, err)
	require.False(t, rec.Passed)
	require.Equal(t, uint64(475), rec.AmountMoved)
	require.Equal(t, vault.Balances{Escrow: 9025, Reward: 500, BountyPool: 475}, rec.Balances)

	// Critical findings double the penalty rate.
	rec, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 30, CriticalCount: 2})
	require.NoError(t, err)
	require.Equal(t, uint64(902), rec.AmountMoved)
	require.Equal(t, vault.Balances{Escrow: 8123, Reward: 500, BountyPool: 1377}, rec.Balances)

	metrics, err := env.svc.GetMetrics(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(30), metrics.LastScore)
	require.Equal(t, uint64(51), metrics.AvgScore)
	require.Equal(t, uint64(3), metrics.TestCount)
	env.requireConserved(t, proj.ID)

	// Owner drains the reward pool back to their own account.
	withdrawn, err := env.svc.WithdrawReward(ctx, owner, proj.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(500), withdrawn)
	require.Equal(t, ownerFunds-10000+500, env.balance(t, owner))
	env.requireConserved(t, proj.ID)

	// Owner routes part of the bounty pool to a hunter, who redeems it.
	require.NoError(t, env.svc.AllocateBounty(ctx, owner, proj.ID, hunter, 400, "sha256:deadbeef"))
	env.requireConserved(t, proj.ID)

	claimed, err := env.svc.ClaimBounty(ctx, hunter, proj.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(400), claimed)
	require.Equal(t, uint64(400), env.balance(t, hunter))
	env.requireConserved(t, proj.ID)

	// A second redemption finds nothing.
	_, err = env.svc.ClaimBounty(ctx, hunter, proj.ID)
	require.ErrorIs(t, err, vault.ErrNothingToClaim)

	balances, err := env.svc.GetBalances(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, vault.Balances{Escrow: 8123, Reward: 0, BountyPool: 977}, balances)
}

func TestEscrowDrainsToZeroAndStops(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 10000, PenaltyRateBps: 10000},
		InitialDeposit: 1000,
	})
	require.NoError(t, err)

	// A full-rate failure empties the escrow in one settlement.
	rec, err := env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 0, CriticalCount: 5})
	require.NoError(t, err)
	require.Equal(t, uint64(1000), rec.AmountMoved, "movement clamps to escrow")
	require.Zero(t, rec.Balances.Escrow)

	// Further reports still record metrics but move nothing.
	rec, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 90})
	require.NoError(t, err)
	require.Zero(t, rec.AmountMoved)
	require.Equal(t, uint64(2), rec.Metrics.TestCount)
	env.requireConserved(t, proj.ID)

	// Topping up re-arms settlement.
	require.NoError(t, env.svc.DepositEscrow(ctx, owner, proj.ID, 2000))
	rec, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 100})
	require.NoError(t, err)
	require.Equal(t, uint64(2000), rec.AmountMoved)
	env.requireConserved(t, proj.ID)
}

func TestGlobalPauseBlocksLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 5000,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.PauseGlobal(ctx, admin))

	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.ErrorIs(t, err, vault.ErrGloballyPaused)
	err = env.svc.DepositEscrow(ctx, owner, proj.ID, 100)
	require.ErrorIs(t, err, vault.ErrGloballyPaused)

	require.NoError(t, env.svc.UnpauseGlobal(ctx, admin))
	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.NoError(t, err)
	env.requireConserved(t, proj.ID)
}

func TestPausedProjectStillSettlesObligations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 10000,
	})
	require.NoError(t, err)

	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.NoError(t, err)
	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 40})
	require.NoError(t, err)

	require.NoError(t, env.svc.PauseProject(ctx, owner, proj.ID))

	// New reports and deposits are rejected while paused.
	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.ErrorIs(t, err, vault.ErrProjectPaused)
	err = env.svc.DepositEscrow(ctx, owner, proj.ID, 100)
	require.ErrorIs(t, err, vault.ErrProjectPaused)

	// Accrued value still flows out.
	withdrawn, err := env.svc.WithdrawReward(ctx, owner, proj.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(500), withdrawn)

	require.NoError(t, env.svc.AllocateBounty(ctx, owner, proj.ID, hunter, 450, ""))
	claimed, err := env.svc.ClaimBounty(ctx, hunter, proj.ID)
	require.NoError(t, err)
	require.Equal(t, uint64(450), claimed)
	env.requireConserved(t, proj.ID)
}

func TestRoleHandover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 5000,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.SetReporter(ctx, admin, "rex-2"))

	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.ErrorIs(t, err, vault.ErrUnauthorized, "old reporter loses the role")

	_, err = env.svc.RecordResult(ctx, "rex-2", vault.ResultRequest{ProjectID: proj.ID, Score: 85})
	require.NoError(t, err)

	require.NoError(t, env.svc.SetAdministrator(ctx, admin, "alice-2"))
	require.ErrorIs(t, env.svc.PauseGlobal(ctx, admin), vault.ErrUnauthorized)
	require.NoError(t, env.svc.PauseGlobal(ctx, "alice-2"))
}

func TestEventTrailCoversEveryMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	proj, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 10000,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.DepositEscrow(ctx, owner, proj.ID, 1000))
	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: proj.ID, Score: 40})
	require.NoError(t, err)
	require.NoError(t, env.svc.AllocateBounty(ctx, owner, proj.ID, hunter, 100, ""))
	_, err = env.svc.ClaimBounty(ctx, hunter, proj.ID)
	require.NoError(t, err)

	events, err := env.svc.ListEvents(ctx, vault.ListEventsOptions{ProjectID: &proj.ID})
	require.NoError(t, err)
	require.Len(t, events, 5)

	// Newest first.
	kinds := make([]vault.EventKind, 0, len(events))
	for _, evt := range events {
		kinds = append(kinds, evt.Kind)
	}
	require.Equal(t, []vault.EventKind{
		vault.EventBountyClaimed,
		vault.EventBountyAllocated,
		vault.EventResultRecorded,
		vault.EventEscrowDeposited,
		vault.EventProjectCreated,
	}, kinds)

	// Every event names its actor and resolved role.
	for _, evt := range events {
		require.NotEmpty(t, evt.Actor)
		require.NotEmpty(t, evt.Role)
		require.Equal(t, proj.ID, evt.ProjectID)
	}
}

func TestMultipleProjectsShareCustody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 70, PayoutRateBps: 500, PenaltyRateBps: 500},
		InitialDeposit: 10000,
	})
	require.NoError(t, err)
	second, err := env.svc.CreateProject(ctx, owner, vault.CreateProjectRequest{
		Config:         vault.ConfigParams{MinScore: 90, PayoutRateBps: 1000, PenaltyRateBps: 2000},
		InitialDeposit: 4000,
	})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, uint64(14000), env.balance(t, custody))

	// Settling one project never touches the other's pools.
	_, err = env.svc.RecordResult(ctx, reporter, vault.ResultRequest{ProjectID: second.ID, Score: 50})
	require.NoError(t, err)

	balances, err := env.svc.GetBalances(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, vault.Balances{Escrow: 10000}, balances)
	env.requireConserved(t, first.ID, second.ID)
}
