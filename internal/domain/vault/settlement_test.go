package vault

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettlePassMovesPayoutRate(t *testing.T) {
	out := settle(10000, 85, 70, 500, 500, 0)
	require.True(t, out.Passed)
	require.Equal(t, uint64(500), out.Amount)
}

func TestSettleExactThresholdPasses(t *testing.T) {
	out := settle(10000, 70, 70, 500, 500, 0)
	require.True(t, out.Passed)
	require.Equal(t, uint64(500), out.Amount)
}

func TestSettleFailMovesPenaltyRate(t *testing.T) {
	out := settle(9500, 40, 70, 500, 500, 0)
	require.False(t, out.Passed)
	require.Equal(t, uint64(475), out.Amount)
}

func TestSettleCriticalDoublesPenalty(t *testing.T) {
	out := settle(9500, 40, 70, 500, 500, 1)
	require.False(t, out.Passed)
	require.Equal(t, uint64(950), out.Amount)

	// Three criticals double once, not three times.
	out = settle(9500, 40, 70, 500, 500, 3)
	require.Equal(t, uint64(950), out.Amount)
}

func TestSettleDoubledPenaltyAtMaxRate(t *testing.T) {
	// A doubled full-rate penalty would be 20000 bps; the effective rate
	// caps at 10000 so the whole escrow moves, even at the uint64 maximum.
	out := settle(math.MaxUint64, 0, 70, 10000, 10000, 1)
	require.False(t, out.Passed)
	require.Equal(t, uint64(math.MaxUint64), out.Amount)

	out = settle(9500, 40, 70, 500, 10000, 2)
	require.Equal(t, uint64(9500), out.Amount)
}

func TestSettleClampsToEscrow(t *testing.T) {
	// Doubled penalty of 200% clamps to the full escrow.
	out := settle(100, 0, 70, 500, 10000, 1)
	require.False(t, out.Passed)
	require.Equal(t, uint64(100), out.Amount)

	// Full-rate payout drains the escrow exactly, never beyond.
	out = settle(100, 90, 70, 10000, 500, 0)
	require.True(t, out.Passed)
	require.Equal(t, uint64(100), out.Amount)
}

func TestSettleZeroEscrowIsNoOp(t *testing.T) {
	out := settle(0, 40, 70, 500, 500, 5)
	require.False(t, out.Passed)
	require.Zero(t, out.Amount)

	out = settle(0, 90, 70, 500, 500, 0)
	require.True(t, out.Passed)
	require.Zero(t, out.Amount)
}

func TestRateOfTruncates(t *testing.T) {
	// 9999 * 500 / 10000 = 499.95 truncates to 499.
	require.Equal(t, uint64(499), rateOf(9999, 500))
	require.Equal(t, uint64(0), rateOf(1, 500))
	require.Equal(t, uint64(10000), rateOf(10000, 10000))
}

func TestRateOfLargeEscrowDoesNotOverflow(t *testing.T) {
	// amount*bps exceeds 64 bits; the 128-bit intermediate keeps it exact.
	require.Equal(t, uint64(math.MaxUint64), rateOf(math.MaxUint64, 10000))
	require.Equal(t, uint64(math.MaxUint64/2), rateOf(math.MaxUint64, 5000))
}

func TestRunningAverage(t *testing.T) {
	require.Equal(t, uint64(85), runningAverage(0, 0, 85))
	require.Equal(t, uint64(77), runningAverage(85, 1, 70))
	// Truncating: (80*2 + 75) / 3 = 78.33 -> 78.
	require.Equal(t, uint64(78), runningAverage(80, 2, 75))
	// A long streak barely moves: (90*100 + 0) / 101 = 89.1 -> 89.
	require.Equal(t, uint64(89), runningAverage(90, 100, 0))
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig(ConfigParams{MinScore: 100, PayoutRateBps: 10000, PenaltyRateBps: 10000}))
	require.NoError(t, ValidateConfig(ConfigParams{}))
	require.ErrorIs(t, ValidateConfig(ConfigParams{MinScore: 101}), ErrInvalidConfig)
	require.ErrorIs(t, ValidateConfig(ConfigParams{PayoutRateBps: 10001}), ErrInvalidConfig)
	require.ErrorIs(t, ValidateConfig(ConfigParams{PenaltyRateBps: 10001}), ErrInvalidConfig)
}

func TestValidateScore(t *testing.T) {
	require.NoError(t, ValidateScore(0))
	require.NoError(t, ValidateScore(100))
	require.ErrorIs(t, ValidateScore(101), ErrInvalidConfig)
	require.ErrorIs(t, ValidateScore(150), ErrInvalidConfig)
}
