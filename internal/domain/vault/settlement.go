package vault

import "math/bits"

// criticalPenaltyFactor doubles the penalty when a report carries at least
// one critical failure, so severity is punished harder than frequency.
const criticalPenaltyFactor = 2

// Outcome is the value movement a single report settles to. Exactly one of
// the two pools receives value, never both.
type Outcome struct {
	Passed bool
	Amount uint64
}

// settle evaluates a score report against the escrow balance as it stood
// before the report. Amounts are clamped to the escrow so no pool can go
// negative regardless of rate configuration; a zero escrow settles to a
// no-op.
func settle(escrow, score, minScore, payoutBps, penaltyBps, criticalCount uint64) Outcome {
	if score >= minScore {
		reward := rateOf(escrow, payoutBps)
		if reward > escrow {
			reward = escrow
		}
		return Outcome{Passed: true, Amount: reward}
	}
	rate := penaltyBps
	if criticalCount > 0 {
		rate *= criticalPenaltyFactor
	}
	// Above 10000 bps the clamp to escrow decides the amount anyway, and
	// capping here keeps the 128-bit quotient in rateOf inside 64 bits for
	// any escrow.
	if rate > MaxRateBps {
		rate = MaxRateBps
	}
	penalty := rateOf(escrow, rate)
	if penalty > escrow {
		penalty = escrow
	}
	return Outcome{Passed: false, Amount: penalty}
}

// rateOf computes amount*bps/10000 with truncating division, using 128-bit
// intermediates so large escrows cannot overflow.
func rateOf(amount, bps uint64) uint64 {
	hi, lo := bits.Mul64(amount, bps)
	quo, _ := bits.Div64(hi, lo, MaxRateBps)
	return quo
}

// runningAverage folds a new score into the truncating-integer running
// average over count prior reports.
func runningAverage(avg, count, score uint64) uint64 {
	if count == 0 {
		return score
	}
	return (avg*count + score) / (count + 1)
}
