package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/repository"
)

// AllocateBounty moves amount from the project's bounty pool into the named
// claimant's entry. Only the owner decides who earned a bounty; only the
// claimant can later redeem it.
func (s *Service) AllocateBounty(ctx context.Context, caller string, id int64, claimant string, amount uint64, evidenceHash string) (err error) {
	defer func() { s.metrics.Operation("allocate_bounty", err) }()

	release, err := s.enter()
	if err != nil {
		return err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return err
	}
	proj, err := s.getProject(ctx, id)
	if err != nil {
		return err
	}
	if caller != proj.Owner {
		return ErrUnauthorized
	}
	if claimant == "" || amount == 0 {
		return fmt.Errorf("%w: claimant and amount are required", ErrInvalidConfig)
	}
	if amount > proj.BountyPool {
		return ErrInsufficientBountyPool
	}

	evt := s.newEvent(id, EventBountyAllocated, caller, roleOf(g, proj, caller), amount, map[string]any{
		"claimant":      claimant,
		"evidence_hash": evidenceHash,
	})
	if err := s.claims.Allocate(ctx, id, claimant, amount, evt); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return ErrInsufficientBountyPool
		}
		return fmt.Errorf("allocating bounty: %w", err)
	}

	s.logger.Info("bounty allocated", "project_id", id, "claimant", claimant, "amount", amount)
	return nil
}

// ClaimBounty pays the caller's full claim entry out. The entry is zeroed
// before the outbound transfer is issued; a failed transfer rolls the
// zeroing back.
func (s *Service) ClaimBounty(ctx context.Context, caller string, id int64) (amount uint64, err error) {
	defer func() { s.metrics.Operation("claim_bounty", err) }()

	release, err := s.enter()
	if err != nil {
		return 0, err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return 0, err
	}
	proj, err := s.getProject(ctx, id)
	if err != nil {
		return 0, err
	}

	evt := s.newEvent(id, EventBountyClaimed, caller, roleOf(g, proj, caller), 0, nil)
	amount, err = s.claims.Redeem(ctx, id, caller, evt, s.transfer(s.custodyAccount, caller))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNothingToClaim
		}
		return 0, fmt.Errorf("claiming bounty: %w", err)
	}

	s.metrics.ValueMoved("claim", amount)
	s.logger.Info("bounty claimed", "project_id", id, "claimant", caller, "amount", amount)
	return amount, nil
}
