package mocks

import (
	"context"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for vault.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *vault.Project, evt *vault.Event, transferIn vault.TransferFunc) (int64, error) {
	args := m.Called(ctx, proj, evt, transferIn)
	if transferIn != nil && args.Error(1) == nil {
		if err := transferIn(ctx, proj.EscrowBalance); err != nil {
			return 0, err
		}
	}
	if args.Error(1) == nil {
		evt.ProjectID = args.Get(0).(int64)
	}
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProjectRepository) Get(ctx context.Context, id int64) (*vault.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*vault.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]vault.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]vault.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) UpdateConfig(ctx context.Context, id int64, cfg vault.ConfigParams, evt *vault.Event) error {
	args := m.Called(ctx, id, cfg, evt)
	return args.Error(0)
}

func (m *ProjectRepository) SetActive(ctx context.Context, id int64, active bool, evt *vault.Event) error {
	args := m.Called(ctx, id, active, evt)
	return args.Error(0)
}

func (m *ProjectRepository) Deposit(ctx context.Context, id int64, amount uint64, evt *vault.Event, transferIn vault.TransferFunc) error {
	args := m.Called(ctx, id, amount, evt, transferIn)
	if transferIn != nil && args.Error(0) == nil {
		if err := transferIn(ctx, amount); err != nil {
			return err
		}
	}
	return args.Error(0)
}

func (m *ProjectRepository) ApplySettlement(ctx context.Context, id int64, upd vault.SettlementUpdate, evt *vault.Event) error {
	args := m.Called(ctx, id, upd, evt)
	return args.Error(0)
}

func (m *ProjectRepository) WithdrawReward(ctx context.Context, id int64, expected uint64, evt *vault.Event, transferOut vault.TransferFunc) error {
	args := m.Called(ctx, id, expected, evt, transferOut)
	if transferOut != nil && args.Error(0) == nil {
		if err := transferOut(ctx, expected); err != nil {
			return err
		}
	}
	return args.Error(0)
}

// ClaimRepository is a mock for vault.ClaimRepository.
type ClaimRepository struct {
	mock.Mock
}

func (m *ClaimRepository) Get(ctx context.Context, projectID int64, claimant string) (*vault.Claim, error) {
	args := m.Called(ctx, projectID, claimant)
	if claim, ok := args.Get(0).(*vault.Claim); ok {
		return claim, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClaimRepository) ListByProject(ctx context.Context, projectID int64) ([]vault.Claim, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]vault.Claim); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClaimRepository) Allocate(ctx context.Context, projectID int64, claimant string, amount uint64, evt *vault.Event) error {
	args := m.Called(ctx, projectID, claimant, amount, evt)
	return args.Error(0)
}

func (m *ClaimRepository) Redeem(ctx context.Context, projectID int64, claimant string, evt *vault.Event, transferOut vault.TransferFunc) (uint64, error) {
	args := m.Called(ctx, projectID, claimant, evt, transferOut)
	amount, _ := args.Get(0).(uint64)
	if transferOut != nil && args.Error(1) == nil {
		if err := transferOut(ctx, amount); err != nil {
			return 0, err
		}
	}
	if args.Error(1) == nil {
		evt.Amount = amount
	}
	return amount, args.Error(1)
}

// GlobalsRepository is a mock for vault.GlobalsRepository.
type GlobalsRepository struct {
	mock.Mock
}

func (m *GlobalsRepository) Get(ctx context.Context) (*vault.Globals, error) {
	args := m.Called(ctx)
	if g, ok := args.Get(0).(*vault.Globals); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GlobalsRepository) SetAdministrator(ctx context.Context, addr string, evt *vault.Event) error {
	args := m.Called(ctx, addr, evt)
	return args.Error(0)
}

func (m *GlobalsRepository) SetReporter(ctx context.Context, addr string, evt *vault.Event) error {
	args := m.Called(ctx, addr, evt)
	return args.Error(0)
}

func (m *GlobalsRepository) SetPaused(ctx context.Context, paused bool, evt *vault.Event) error {
	args := m.Called(ctx, paused, evt)
	return args.Error(0)
}

func (m *GlobalsRepository) Bootstrap(ctx context.Context, administrator, reporter string) error {
	args := m.Called(ctx, administrator, reporter)
	return args.Error(0)
}

// EventRepository is a mock for vault.EventRepository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) List(ctx context.Context, opts vault.ListEventsOptions) ([]vault.Event, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]vault.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Transferor is a mock for token.Transferor.
type Transferor struct {
	mock.Mock
}

func (m *Transferor) Transfer(ctx context.Context, from, to string, amount uint64) error {
	args := m.Called(ctx, from, to, amount)
	return args.Error(0)
}
