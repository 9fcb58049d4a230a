package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/token"
)

// TokenBank is the built-in account ledger for the deployment's single
// fungible token. It implements token.Transferor. When called from inside a
// ledger operation it joins the operation's transaction via the context, so
// a failed operation also rolls the token movement back.
type TokenBank struct {
	db *DB
}

// NewTokenBank creates a new TokenBank
func NewTokenBank(db *DB) *TokenBank {
	return &TokenBank{db: db}
}

// Transfer moves amount from one account to another, in full or not at all.
func (b *TokenBank) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if tx, ok := txFrom(ctx); ok {
		return transferFunds(ctx, tx, from, to, amount)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := transferFunds(ctx, tx, from, to, amount); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func transferFunds(ctx context.Context, e execer, from, to string, amount uint64) error {
	res, err := e.ExecContext(ctx, `
		UPDATE token_accounts SET balance = balance - ?
		WHERE address = ? AND balance >= ?
	`, amount, from, amount)
	if err != nil {
		return fmt.Errorf("failed to debit account: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if affected == 0 {
		return token.ErrInsufficientFunds
	}

	_, err = e.ExecContext(ctx, `
		INSERT INTO token_accounts (address, balance) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance
	`, to, amount)
	if err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}
	return nil
}

// Mint credits an account out of thin air. Used for seeding dev deployments
// and tests; the ledger itself never mints.
func (b *TokenBank) Mint(ctx context.Context, address string, amount uint64) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO token_accounts (address, balance) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance
	`, address, amount)
	if err != nil {
		return fmt.Errorf("failed to mint: %w", err)
	}
	return nil
}

// Balance returns an account's balance; missing accounts hold zero.
func (b *TokenBank) Balance(ctx context.Context, address string) (uint64, error) {
	var balance uint64
	err := b.db.QueryRowContext(ctx, `
		SELECT balance FROM token_accounts WHERE address = ?
	`, address).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}
