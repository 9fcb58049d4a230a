package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
	"github.com/covenant-ledger/covenant/internal/repository"
)

// ProjectRepository implements vault.ProjectRepository for SQLite.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, owner, token, min_score, payout_rate_bps, penalty_rate_bps,
	escrow_balance, reward_balance, bounty_pool_balance,
	last_score, avg_score, test_count, last_report_time, active, created_at
`

// Create inserts the project, runs the initial deposit transfer inside the
// same transaction, and records the creation event stamped with the new ID.
func (r *ProjectRepository) Create(ctx context.Context, proj *vault.Project, evt *vault.Event, transferIn vault.TransferFunc) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if transferIn != nil {
		if err := transferIn(withTx(ctx, tx), proj.EscrowBalance); err != nil {
			return 0, fmt.Errorf("initial deposit transfer: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO projects (
			owner, token, min_score, payout_rate_bps, penalty_rate_bps,
			escrow_balance, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, proj.Owner, proj.Token, proj.MinScore, proj.PayoutRateBps, proj.PenaltyRateBps,
		proj.EscrowBalance, proj.Active, proj.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new project id: %w", err)
	}

	evt.ProjectID = id
	if err := insertEvent(ctx, tx, evt); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*vault.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	proj, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]vault.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []vault.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// UpdateConfig replaces the settlement thresholds, leaving balances alone.
func (r *ProjectRepository) UpdateConfig(ctx context.Context, id int64, cfg vault.ConfigParams, evt *vault.Event) error {
	return r.update(ctx, evt, `
		UPDATE projects
		SET min_score = ?, payout_rate_bps = ?, penalty_rate_bps = ?
		WHERE id = ?
	`, cfg.MinScore, cfg.PayoutRateBps, cfg.PenaltyRateBps, id)
}

// SetActive toggles the project's activity flag.
func (r *ProjectRepository) SetActive(ctx context.Context, id int64, active bool, evt *vault.Event) error {
	return r.update(ctx, evt, `UPDATE projects SET active = ? WHERE id = ?`, active, id)
}

// Deposit runs the inbound transfer, then credits the escrow. Both happen
// in one transaction: the escrow is never credited for tokens not received.
func (r *ProjectRepository) Deposit(ctx context.Context, id int64, amount uint64, evt *vault.Event, transferIn vault.TransferFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if transferIn != nil {
		if err := transferIn(withTx(ctx, tx), amount); err != nil {
			return fmt.Errorf("deposit transfer: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET escrow_balance = escrow_balance + ? WHERE id = ?
	`, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit escrow: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return repository.ErrNotFound
	}

	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplySettlement atomically applies one score report: metrics update plus
// the movement of upd.Amount out of escrow into exactly one pool. The
// test_count guard rejects a report racing another report on the same
// project; the escrow guard makes over-draining impossible at the storage
// layer as well.
func (r *ProjectRepository) ApplySettlement(ctx context.Context, id int64, upd vault.SettlementUpdate, evt *vault.Event) error {
	var rewardDelta, bountyDelta uint64
	if upd.Passed {
		rewardDelta = upd.Amount
	} else {
		bountyDelta = upd.Amount
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET escrow_balance = escrow_balance - ?,
		    reward_balance = reward_balance + ?,
		    bounty_pool_balance = bounty_pool_balance + ?,
		    last_score = ?,
		    avg_score = ?,
		    test_count = ?,
		    last_report_time = ?
		WHERE id = ? AND test_count = ? AND escrow_balance >= ?
	`, upd.Amount, rewardDelta, bountyDelta,
		upd.LastScore, upd.AvgScore, upd.TestCount, upd.ReportTime,
		id, upd.ExpectedTestCount, upd.Amount)
	if err != nil {
		return fmt.Errorf("failed to apply settlement: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return r.missingOrConflict(ctx, tx, id)
	}

	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithdrawReward zeroes the reward pool, then runs the outbound transfer of
// the zeroed amount. A failed transfer rolls the zeroing back.
func (r *ProjectRepository) WithdrawReward(ctx context.Context, id int64, expected uint64, evt *vault.Event, transferOut vault.TransferFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE projects SET reward_balance = 0 WHERE id = ? AND reward_balance = ?
	`, id, expected)
	if err != nil {
		return fmt.Errorf("failed to zero reward balance: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return r.missingOrConflict(ctx, tx, id)
	}

	if transferOut != nil {
		if err := transferOut(withTx(ctx, tx), expected); err != nil {
			return fmt.Errorf("reward transfer: %w", err)
		}
	}

	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ProjectRepository) update(ctx context.Context, evt *vault.Event, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return repository.ErrNotFound
	}

	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// missingOrConflict distinguishes a vanished project from a lost guard race.
func (r *ProjectRepository) missingOrConflict(ctx context.Context, tx *sql.Tx, id int64) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check project existence: %w", err)
	}
	return repository.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*vault.Project, error) {
	var proj vault.Project
	var lastReport sql.NullTime
	err := row.Scan(
		&proj.ID,
		&proj.Owner,
		&proj.Token,
		&proj.MinScore,
		&proj.PayoutRateBps,
		&proj.PenaltyRateBps,
		&proj.EscrowBalance,
		&proj.RewardBalance,
		&proj.BountyPool,
		&proj.LastScore,
		&proj.AvgScore,
		&proj.TestCount,
		&lastReport,
		&proj.Active,
		&proj.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastReport.Valid {
		proj.LastReportTime = lastReport.Time
	}
	return &proj, nil
}
