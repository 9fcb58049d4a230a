package vault

import "errors"

var (
	// ErrUnauthorized indicates the caller does not hold the role the
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrGloballyPaused indicates the global kill-switch is set.
	ErrGloballyPaused = errors.New("ledger globally paused")
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectPaused indicates the project is inactive for the operation.
	ErrProjectPaused = errors.New("project paused")
	// ErrInvalidConfig indicates a score, rate, or amount bound violation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNothingToWithdraw indicates an empty reward pool.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	// ErrNothingToClaim indicates the caller has no claimable bounty.
	ErrNothingToClaim = errors.New("nothing to claim")
	// ErrInsufficientBountyPool indicates an allocation exceeding the pool.
	ErrInsufficientBountyPool = errors.New("insufficient bounty pool")
	// ErrReentrantCall indicates nested entry during an outbound transfer.
	ErrReentrantCall = errors.New("reentrant call")
	// ErrTransferFailed indicates the outbound token transfer failed; the
	// whole operation is rolled back.
	ErrTransferFailed = errors.New("token transfer failed")
)
