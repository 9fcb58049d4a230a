package sqlite

import (
	"context"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

// GlobalsRepository implements vault.GlobalsRepository for SQLite. The
// globals live in a single guarded row created by the migration.
type GlobalsRepository struct {
	db *DB
}

// NewGlobalsRepository creates a new GlobalsRepository
func NewGlobalsRepository(db *DB) *GlobalsRepository {
	return &GlobalsRepository{db: db}
}

// Get returns the singleton row.
func (r *GlobalsRepository) Get(ctx context.Context) (*vault.Globals, error) {
	var g vault.Globals
	err := r.db.QueryRowContext(ctx, `
		SELECT administrator, reporter, paused FROM globals WHERE id = 1
	`).Scan(&g.Administrator, &g.Reporter, &g.Paused)
	if err != nil {
		return nil, fmt.Errorf("failed to get globals: %w", err)
	}
	return &g, nil
}

// SetAdministrator transfers the administrator role.
func (r *GlobalsRepository) SetAdministrator(ctx context.Context, addr string, evt *vault.Event) error {
	return r.set(ctx, evt, `UPDATE globals SET administrator = ? WHERE id = 1`, addr)
}

// SetReporter transfers the reporter role.
func (r *GlobalsRepository) SetReporter(ctx context.Context, addr string, evt *vault.Event) error {
	return r.set(ctx, evt, `UPDATE globals SET reporter = ? WHERE id = 1`, addr)
}

// SetPaused toggles the kill-switch.
func (r *GlobalsRepository) SetPaused(ctx context.Context, paused bool, evt *vault.Event) error {
	return r.set(ctx, evt, `UPDATE globals SET paused = ? WHERE id = 1`, paused)
}

// Bootstrap seeds the administrator and reporter on first boot only, so a
// restart never undoes a role transfer.
func (r *GlobalsRepository) Bootstrap(ctx context.Context, administrator, reporter string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE globals SET administrator = ?, reporter = ?
		WHERE id = 1 AND administrator = '' AND reporter = ''
	`, administrator, reporter)
	if err != nil {
		return fmt.Errorf("failed to bootstrap globals: %w", err)
	}
	return nil
}

func (r *GlobalsRepository) set(ctx context.Context, evt *vault.Event, query string, args ...any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update globals: %w", err)
	}
	if err := insertEvent(ctx, tx, evt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
