// Package vault implements the custody-and-settlement ledger: the project
// registry, the three per-project pools, the settlement state-transition
// function, the bounty sub-ledger, and the access-control lattice over all
// of them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/covenant-ledger/covenant/internal/metrics"
	"github.com/covenant-ledger/covenant/internal/repository"
	"github.com/covenant-ledger/covenant/internal/token"
)

// Service is the ledger. Every state-changing operation runs to completion
// (success or total rollback) under one mutex; there is no internal
// parallelism and no background work.
type Service struct {
	projects ProjectRepository
	claims   ClaimRepository
	globals  GlobalsRepository
	events   EventRepository
	token    token.Transferor
	logger   *slog.Logger
	metrics  *metrics.Metrics

	custodyAccount string
	tokenSymbol    string
	now            func() time.Time

	mu           sync.Mutex
	transferring atomic.Bool
}

// Options carries deployment parameters for the service.
type Options struct {
	// CustodyAccount is the token account holding all pooled collateral.
	CustodyAccount string
	// TokenSymbol is the single fungible asset of this deployment.
	TokenSymbol string
	Metrics     *metrics.Metrics
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewService creates the ledger service.
func NewService(projects ProjectRepository, claims ClaimRepository, globals GlobalsRepository, events EventRepository, transferor token.Transferor, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	custody := opts.CustodyAccount
	if custody == "" {
		custody = "vault:custody"
	}
	symbol := opts.TokenSymbol
	if symbol == "" {
		symbol = "USDC"
	}
	return &Service{
		projects:       projects,
		claims:         claims,
		globals:        globals,
		events:         events,
		token:          transferor,
		logger:         logger,
		metrics:        opts.Metrics,
		custodyAccount: custody,
		tokenSymbol:    symbol,
		now:            now,
	}
}

// enter serializes a state-changing operation. A call arriving while an
// outbound transfer is in flight can only be a re-entrant callback from the
// transferor (or a concurrent caller racing the same window, which retries),
// so it is rejected before touching the mutex to avoid deadlock.
func (s *Service) enter() (func(), error) {
	if s.transferring.Load() {
		return nil, ErrReentrantCall
	}
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// gate loads the globals and enforces the kill-switch. Operations that must
// work while paused (the two global toggles) load globals directly.
func (s *Service) gate(ctx context.Context) (*Globals, error) {
	g, err := s.globals.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading globals: %w", err)
	}
	if g.Paused {
		return nil, ErrGloballyPaused
	}
	return g, nil
}

// roleOf resolves the caller to exactly one role, once per operation.
// Administrator and reporter identities take precedence over ownership.
func roleOf(g *Globals, proj *Project, caller string) Role {
	switch {
	case caller == g.Administrator:
		return RoleAdministrator
	case caller == g.Reporter:
		return RoleReporter
	case proj != nil && caller == proj.Owner:
		return RoleOwner
	default:
		return RoleClaimant
	}
}

// transfer builds the operation's outbound token movement. The transfer
// window is flagged so nested entry fails with ErrReentrantCall instead of
// deadlocking or double-spending.
func (s *Service) transfer(from, to string) TransferFunc {
	return func(ctx context.Context, amount uint64) error {
		s.transferring.Store(true)
		defer s.transferring.Store(false)
		if err := s.token.Transfer(ctx, from, to, amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		return nil
	}
}

// getProject maps repository lookups to the domain error.
func (s *Service) getProject(ctx context.Context, id int64) (*Project, error) {
	proj, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

func (s *Service) newEvent(projectID int64, kind EventKind, actor string, role Role, amount uint64, details map[string]any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Kind:      kind,
		Actor:     actor,
		Role:      role,
		Amount:    amount,
		Details:   details,
		CreatedAt: s.now(),
	}
}

// GetProject returns the full project record.
func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	return s.getProject(ctx, id)
}

// GetBalances returns the three pool balances.
func (s *Service) GetBalances(ctx context.Context, id int64) (Balances, error) {
	proj, err := s.getProject(ctx, id)
	if err != nil {
		return Balances{}, err
	}
	return proj.Balances(), nil
}

// GetMetrics returns the reporting metrics.
func (s *Service) GetMetrics(ctx context.Context, id int64) (Metrics, error) {
	proj, err := s.getProject(ctx, id)
	if err != nil {
		return Metrics{}, err
	}
	return proj.Metrics(), nil
}

// ListProjects returns all registered projects.
func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.projects.List(ctx)
}

// ListEvents returns audit events, newest first.
func (s *Service) ListEvents(ctx context.Context, opts ListEventsOptions) ([]Event, error) {
	return s.events.List(ctx, opts)
}

// GetClaim returns a claimant's bounty entry for a project.
func (s *Service) GetClaim(ctx context.Context, projectID int64, claimant string) (*Claim, error) {
	claim, err := s.claims.Get(ctx, projectID, claimant)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &Claim{ProjectID: projectID, Claimant: claimant}, nil
		}
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// GetGlobals returns the administrator, reporter, and kill-switch state.
func (s *Service) GetGlobals(ctx context.Context) (*Globals, error) {
	return s.globals.Get(ctx)
}
