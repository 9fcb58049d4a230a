package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// CredentialStore resolves bearer tokens to account addresses. Only the
// SHA-256 of each token is stored.
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// ResolveActor returns the account address behind a bearer token.
func (s *CredentialStore) ResolveActor(ctx context.Context, bearer string) (string, error) {
	hash := hashToken(bearer)
	var address string
	err := s.db.QueryRowContext(ctx, `
		SELECT address FROM credentials WHERE token_hash = ?
	`, hash).Scan(&address)
	if err == sql.ErrNoRows || (err == nil && address == "") {
		return "", fmt.Errorf("unauthorized: invalid token")
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve credential: %w", err)
	}

	// Best effort; a failed touch must not fail the request.
	_, _ = s.db.ExecContext(ctx, `UPDATE credentials SET last_used = ? WHERE token_hash = ?`, time.Now(), hash)
	return address, nil
}

// Put registers (or re-points) a bearer token for an address.
func (s *CredentialStore) Put(ctx context.Context, bearer, address, description string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (token_hash, address, description) VALUES (?, ?, ?)
		ON CONFLICT(token_hash) DO UPDATE SET address = excluded.address, description = excluded.description
	`, hashToken(bearer), address, description)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func hashToken(bearer string) string {
	sum := sha256.Sum256([]byte(bearer))
	return hex.EncodeToString(sum[:])
}
