package vault

import (
	"context"
	"fmt"
)

// CreateProjectRequest carries the owner-supplied configuration and the
// mandatory initial deposit.
type CreateProjectRequest struct {
	Config         ConfigParams
	InitialDeposit uint64
}

// CreateProject registers a new project. The caller becomes the owner, the
// initial deposit moves into custody, and the record is queryable only after
// both have succeeded. Project identifiers are never reused.
func (s *Service) CreateProject(ctx context.Context, caller string, req CreateProjectRequest) (proj *Project, err error) {
	defer func() { s.metrics.Operation("create_project", err) }()

	release, err := s.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(req.Config); err != nil {
		return nil, err
	}
	if req.InitialDeposit == 0 {
		return nil, fmt.Errorf("%w: initial deposit must be positive", ErrInvalidConfig)
	}

	now := s.now()
	proj = &Project{
		Owner:          caller,
		Token:          s.tokenSymbol,
		MinScore:       req.Config.MinScore,
		PayoutRateBps:  req.Config.PayoutRateBps,
		PenaltyRateBps: req.Config.PenaltyRateBps,
		EscrowBalance:  req.InitialDeposit,
		Active:         true,
		CreatedAt:      now,
	}
	evt := s.newEvent(0, EventProjectCreated, caller, roleOf(g, proj, caller), req.InitialDeposit, map[string]any{
		"min_score":        req.Config.MinScore,
		"payout_rate_bps":  req.Config.PayoutRateBps,
		"penalty_rate_bps": req.Config.PenaltyRateBps,
		"token":            s.tokenSymbol,
	})

	id, err := s.projects.Create(ctx, proj, evt, s.transfer(caller, s.custodyAccount))
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	proj.ID = id

	s.metrics.ValueMoved("deposit", req.InitialDeposit)
	s.logger.Info("project created", "project_id", id, "owner", caller, "deposit", req.InitialDeposit)
	return proj, nil
}

// UpdateConfig reconfigures the settlement thresholds. Balances are
// untouched; the new rates apply from the next report.
func (s *Service) UpdateConfig(ctx context.Context, caller string, id int64, cfg ConfigParams) (err error) {
	defer func() { s.metrics.Operation("update_config", err) }()

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
	if err := ValidateConfig(cfg); err != nil {
		return err
	}

	evt := s.newEvent(id, EventConfigUpdated, caller, roleOf(g, proj, caller), 0, map[string]any{
		"min_score":        cfg.MinScore,
		"payout_rate_bps":  cfg.PayoutRateBps,
		"penalty_rate_bps": cfg.PenaltyRateBps,
	})
	if err := s.projects.UpdateConfig(ctx, id, cfg, evt); err != nil {
		return fmt.Errorf("updating config: %w", err)
	}

	s.logger.Info("project reconfigured", "project_id", id, "min_score", cfg.MinScore)
	return nil
}

// PauseProject deactivates a project: settlement reports and new deposits
// are rejected, but earned funds stay withdrawable and claimable.
func (s *Service) PauseProject(ctx context.Context, caller string, id int64) error {
	return s.setProjectActive(ctx, caller, id, false)
}

// UnpauseProject reactivates a project.
func (s *Service) UnpauseProject(ctx context.Context, caller string, id int64) error {
	return s.setProjectActive(ctx, caller, id, true)
}

func (s *Service) setProjectActive(ctx context.Context, caller string, id int64, active bool) (err error) {
	op, kind := "pause_project", EventProjectPaused
	if active {
		op, kind = "unpause_project", EventProjectUnpaused
	}
	defer func() { s.metrics.Operation(op, err) }()

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
	if caller != proj.Owner && caller != g.Administrator {
		return ErrUnauthorized
	}

	evt := s.newEvent(id, kind, caller, roleOf(g, proj, caller), 0, nil)
	if err := s.projects.SetActive(ctx, id, active, evt); err != nil {
		return fmt.Errorf("toggling project: %w", err)
	}

	s.logger.Info("project activity toggled", "project_id", id, "active", active, "actor", caller)
	return nil
}
