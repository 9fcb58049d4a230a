package mcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

func TestMapError(t *testing.T) {
	cases := map[string]struct {
		err  error
		code string
	}{
		"unauthorized":      {vault.ErrUnauthorized, "UNAUTHORIZED"},
		"globally paused":   {vault.ErrGloballyPaused, "GLOBALLY_PAUSED"},
		"project not found": {vault.ErrProjectNotFound, "PROJECT_NOT_FOUND"},
		"project paused":    {vault.ErrProjectPaused, "PROJECT_PAUSED"},
		"invalid config":    {vault.ErrInvalidConfig, "INVALID_CONFIG"},
		"nothing withdraw":  {vault.ErrNothingToWithdraw, "NOTHING_TO_WITHDRAW"},
		"nothing claim":     {vault.ErrNothingToClaim, "NOTHING_TO_CLAIM"},
		"insufficient pool": {vault.ErrInsufficientBountyPool, "INSUFFICIENT_BOUNTY_POOL"},
		"reentrant":         {vault.ErrReentrantCall, "REENTRANT_CALL"},
		"transfer failed":   {vault.ErrTransferFailed, "TRANSFER_FAILED"},
	}
	for name, tc := range cases {
		apiErr := MapError(tc.err)
		require.NotNil(t, apiErr, name)
		require.Equal(t, tc.code, apiErr.Code, name)

		// Wrapped errors map the same way.
		apiErr = MapError(fmt.Errorf("outer: %w", tc.err))
		require.NotNil(t, apiErr, name)
		require.Equal(t, tc.code, apiErr.Code, name)
	}
}

func TestMapErrorPassesUnknownThrough(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("disk on fire")))

	err := mapErr(errors.New("disk on fire"))
	require.EqualError(t, err, "disk on fire")
}
