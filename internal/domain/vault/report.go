package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/repository"
)

// ResultRequest is a trust-scored attestation from the reporter.
type ResultRequest struct {
	ProjectID     int64
	Score         uint64
	CriticalCount uint64
	EvidenceHash  string
}

// RecordResult is the settlement state-transition function. It folds the
// score into the project metrics, then moves value out of escrow into
// exactly one of the reward or bounty pools. This and the two withdrawal
// paths are the only code that may touch the three pools.
func (s *Service) RecordResult(ctx context.Context, caller string, req ResultRequest) (rec *ResultRecord, err error) {
	defer func() { s.metrics.Operation("record_result", err) }()

	release, err := s.enter()
	if err != nil {
		return nil, err
	}
	defer release()

	g, err := s.gate(ctx)
	if err != nil {
		return nil, err
	}
	if caller != g.Reporter {
		return nil, ErrUnauthorized
	}
	if err := ValidateScore(req.Score); err != nil {
		return nil, err
	}
	proj, err := s.getProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !proj.Active {
		return nil, ErrProjectPaused
	}

	outcome := settle(proj.EscrowBalance, req.Score, proj.MinScore, proj.PayoutRateBps, proj.PenaltyRateBps, req.CriticalCount)
	now := s.now()
	upd := SettlementUpdate{
		ExpectedTestCount: proj.TestCount,
		TestCount:         proj.TestCount + 1,
		LastScore:         req.Score,
		AvgScore:          runningAverage(proj.AvgScore, proj.TestCount, req.Score),
		ReportTime:        now,
		Passed:            outcome.Passed,
		Amount:            outcome.Amount,
	}

	evt := s.newEvent(req.ProjectID, EventResultRecorded, caller, RoleReporter, outcome.Amount, map[string]any{
		"score":          req.Score,
		"critical_count": req.CriticalCount,
		"evidence_hash":  req.EvidenceHash,
		"passed":         outcome.Passed,
	})
	if err := s.projects.ApplySettlement(ctx, req.ProjectID, upd, evt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("settlement raced a concurrent report: %w", err)
		}
		return nil, fmt.Errorf("applying settlement: %w", err)
	}

	balances := proj.Balances()
	balances.Escrow -= outcome.Amount
	if outcome.Passed {
		balances.Reward += outcome.Amount
	} else {
		balances.BountyPool += outcome.Amount
	}
	rec = &ResultRecord{
		ProjectID:     req.ProjectID,
		Score:         req.Score,
		CriticalCount: req.CriticalCount,
		EvidenceHash:  req.EvidenceHash,
		Passed:        outcome.Passed,
		AmountMoved:   outcome.Amount,
		Balances:      balances,
		Metrics: Metrics{
			LastScore:      upd.LastScore,
			AvgScore:       upd.AvgScore,
			TestCount:      upd.TestCount,
			LastReportTime: now,
		},
	}

	s.metrics.Settlement(outcome.Passed, outcome.Amount)
	s.logger.Info("result recorded",
		"project_id", req.ProjectID,
		"score", req.Score,
		"critical_count", req.CriticalCount,
		"passed", outcome.Passed,
		"amount_moved", outcome.Amount,
	)
	return rec, nil
}
