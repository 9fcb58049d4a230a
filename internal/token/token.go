// Package token defines the outbound transfer boundary of the ledger: the
// single external interaction every custody operation performs.
package token

import (
	"context"
	"errors"
)

// ErrInsufficientFunds indicates the source account cannot cover a transfer.
var ErrInsufficientFunds = errors.New("insufficient token funds")

// Transferor moves value between accounts of the deployment's single
// fungible token. Implementations must either complete the movement in full
// or leave both accounts untouched.
type Transferor interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}
