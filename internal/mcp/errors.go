package mcp

import (
	"errors"
	"fmt"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps ledger errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, vault.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: err.Error(), RecoveryHint: "Use an account that holds the required role"}
	case errors.Is(err, vault.ErrGloballyPaused):
		return &APIError{Code: "GLOBALLY_PAUSED", Message: "ledger is paused", RecoveryHint: "Wait for the administrator to unpause"}
	case errors.Is(err, vault.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Check the project id"}
	case errors.Is(err, vault.ErrProjectPaused):
		return &APIError{Code: "PROJECT_PAUSED", Message: "project is paused", RecoveryHint: "Ask the owner to unpause the project"}
	case errors.Is(err, vault.ErrInvalidConfig):
		return &APIError{Code: "INVALID_CONFIG", Message: err.Error(), RecoveryHint: "Scores are 0-100, rates are 0-10000 basis points"}
	case errors.Is(err, vault.ErrNothingToWithdraw):
		return &APIError{Code: "NOTHING_TO_WITHDRAW", Message: "reward balance is zero"}
	case errors.Is(err, vault.ErrNothingToClaim):
		return &APIError{Code: "NOTHING_TO_CLAIM", Message: "no bounty allocated to this account"}
	case errors.Is(err, vault.ErrInsufficientBountyPool):
		return &APIError{Code: "INSUFFICIENT_BOUNTY_POOL", Message: "allocation exceeds the bounty pool"}
	case errors.Is(err, vault.ErrReentrantCall):
		return &APIError{Code: "REENTRANT_CALL", Message: "operation rejected while a transfer is in flight", RecoveryHint: "Retry the call"}
	case errors.Is(err, vault.ErrTransferFailed):
		return &APIError{Code: "TRANSFER_FAILED", Message: err.Error(), RecoveryHint: "Check the account balance and retry"}
	default:
		return nil
	}
}

// mapErr converts known ledger errors into APIErrors and passes the rest
// through unchanged.
func mapErr(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

// errMissingActor is returned when no caller identity reached the tool.
var errMissingActor = &APIError{Code: "UNAUTHORIZED", Message: "missing caller identity", RecoveryHint: "Send a bearer token"}
