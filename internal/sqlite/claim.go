package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
	"github.com/covenant-ledger/covenant/internal/repository"
)

// ClaimRepository implements vault.ClaimRepository for SQLite.
type ClaimRepository struct {
	db *DB
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Get retrieves a claim entry.
func (r *ClaimRepository) Get(ctx context.Context, projectID int64, claimant string) (*vault.Claim, error) {
	var claim vault.Claim
	err := r.db.QueryRowContext(ctx, `
		SELECT project_id, claimant, amount, updated_at
		FROM claims
		WHERE project_id = ? AND claimant = ?
	`, projectID, claimant).Scan(&claim.ProjectID, &claim.Claimant, &claim.Amount, &claim.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return &claim, nil
}

// ListByProject returns all claim entries for a project.
func (r *ClaimRepository) ListByProject(ctx context.Context, projectID int64) ([]vault.Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT project_id, claimant, amount, updated_at
		FROM claims
		WHERE project_id = ?
		ORDER BY claimant
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	var claims []vault.Claim
	for rows.Next() {
		var claim vault.Claim
		if err := rows.Scan(&claim.ProjectID, &claim.Claimant, &claim.Amount, &claim.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claim rows: %w", err)
	}
	return claims, nil
}

// Allocate decrements the project's bounty pool and increments the claim
// entry in one transaction. The pool guard rejects over-allocation.
func (r *ClaimRepository) Allocate(ctx context.Context, projectID int64, claimant string, amount uint64, evt *vault.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET bounty_pool_balance = bounty_pool_balance - ?
		WHERE id = ? AND bounty_pool_balance >= ?
	`, amount, projectID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit bounty pool: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&one)
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check project existence: %w", err)
		}
		return repository.ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO claims (project_id, claimant, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, claimant) DO UPDATE
		SET amount = amount + excluded.amount, updated_at = excluded.updated_at
	`, projectID, claimant, amount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to credit claim: %w", err)
	}

	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Redeem zeroes the claimant's entry and runs the outbound transfer of the
// zeroed amount, all in one transaction. A missing or empty entry is
// repository.ErrNotFound.
func (r *ClaimRepository) Redeem(ctx context.Context, projectID int64, claimant string, evt *vault.Event, transferOut vault.TransferFunc) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var amount uint64
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM claims WHERE project_id = ? AND claimant = ?
	`, projectID, claimant).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, repository.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read claim: %w", err)
	}
	if amount == 0 {
		return 0, repository.ErrNotFound
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE claims SET amount = 0, updated_at = ?
		WHERE project_id = ? AND claimant = ? AND amount = ?
	`, time.Now(), projectID, claimant, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to zero claim: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return 0, repository.ErrConflict
	}

	if transferOut != nil {
		if err := transferOut(withTx(ctx, tx), amount); err != nil {
			return 0, fmt.Errorf("claim transfer: %w", err)
		}
	}

	evt.Amount = amount
	if err := insertEvent(ctx, tx, evt); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return amount, nil
}
