package vault

import (
	"context"
	"fmt"
)

// DepositEscrow moves amount from the owner's token account into custody and
// credits the project's escrow. The escrow is credited only if the inbound
// transfer succeeded; both happen in one transaction or not at all.
func (s *Service) DepositEscrow(ctx context.Context, caller string, id int64, amount uint64) (err error) {
	defer func() { s.metrics.Operation("deposit_escrow", err) }()

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
	if !proj.Active {
		return ErrProjectPaused
	}
	if amount == 0 {
		return fmt.Errorf("%w: deposit must be positive", ErrInvalidConfig)
	}

	evt := s.newEvent(id, EventEscrowDeposited, caller, roleOf(g, proj, caller), amount, nil)
	if err := s.projects.Deposit(ctx, id, amount, evt, s.transfer(caller, s.custodyAccount)); err != nil {
		return fmt.Errorf("depositing escrow: %w", err)
	}

	s.metrics.ValueMoved("deposit", amount)
	s.logger.Info("escrow deposited", "project_id", id, "amount", amount)
	return nil
}

// WithdrawReward pays the full reward pool out to the owner. The pool is
// zeroed before the outbound transfer is issued; a failed transfer rolls the
// zeroing back.
func (s *Service) WithdrawReward(ctx context.Context, caller string, id int64) (amount uint64, err error) {
	defer func() { s.metrics.Operation("withdraw_reward", err) }()

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
	if caller != proj.Owner {
		return 0, ErrUnauthorized
	}
	if proj.RewardBalance == 0 {
		return 0, ErrNothingToWithdraw
	}

	amount = proj.RewardBalance
	evt := s.newEvent(id, EventRewardWithdrawn, caller, roleOf(g, proj, caller), amount, nil)
	if err := s.projects.WithdrawReward(ctx, id, amount, evt, s.transfer(s.custodyAccount, proj.Owner)); err != nil {
		return 0, fmt.Errorf("withdrawing reward: %w", err)
	}

	s.metrics.ValueMoved("withdrawal", amount)
	s.logger.Info("reward withdrawn", "project_id", id, "owner", proj.Owner, "amount", amount)
	return amount, nil
}
